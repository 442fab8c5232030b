package jsengine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/standardbeagle/jsps/internal/debug"
	"github.com/standardbeagle/jsps/internal/definition"
)

// ScriptError is an exception thrown by definition code
type ScriptError struct {
	Message string
	Stack   string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Host links compiled definitions into isolated goja runtimes, one per module.
type Host struct{}

// NewHost creates a goja backed predicate host
func NewHost() *Host {
	return &Host{}
}

// module wraps one runtime. goja runtimes are not goroutine-safe, so every
// entry into the runtime goes through mu.
type module struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	exports *goja.Object
}

// Link evaluates CommonJS code and captures its exports
func (h *Host) Link(name, code string) (definition.Module, error) {
	vm := goja.New()
	installGlobals(vm)

	wrapped := "(function(exports, module) {\n" + code + "\n})"
	value, err := vm.RunScript(name, wrapped)
	if err != nil {
		return nil, scriptErr(err)
	}
	body, ok := goja.AssertFunction(value)
	if !ok {
		return nil, fmt.Errorf("module wrapper for %s did not evaluate to a function", name)
	}

	exports := vm.NewObject()
	moduleObj := vm.NewObject()
	if err := moduleObj.Set("exports", exports); err != nil {
		return nil, err
	}
	if _, err := body(goja.Undefined(), exports, moduleObj); err != nil {
		return nil, scriptErr(err)
	}

	final := moduleObj.Get("exports")
	if final == nil || goja.IsUndefined(final) || goja.IsNull(final) {
		return nil, errors.New("module.exports was cleared")
	}

	debug.LogLoad("linked %s", name)
	return &module{vm: vm, exports: final.ToObject(vm)}, nil
}

func installGlobals(vm *goja.Runtime) {
	console := vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		_ = console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = arg.String()
			}
			debug.LogScript("console.%s: %s", level, strings.Join(parts, " "))
			return goja.Undefined()
		})
	}
	_ = vm.Set("console", console)

	_ = vm.Set("require", func(call goja.FunctionCall) goja.Value {
		panic(vm.NewTypeError("require(%s) is not available in search definitions", call.Argument(0).String()))
	})
}

func (m *module) Exports() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exports.Keys()
}

func (m *module) HasFunction(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := goja.AssertFunction(m.exports.Get(name))
	return ok
}

func (m *module) Call(name string) (definition.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn, ok := goja.AssertFunction(m.exports.Get(name))
	if !ok {
		return nil, fmt.Errorf("%s is not a function", name)
	}
	result, err := fn(goja.Undefined())
	if err != nil {
		return nil, scriptErr(err)
	}
	if _, isFunc := goja.AssertFunction(result); isFunc {
		return nil, definition.ErrNotObject
	}
	obj, ok := result.(*goja.Object)
	if !ok {
		return nil, definition.ErrNotObject
	}
	return &object{module: m, obj: obj}, nil
}

type object struct {
	module *module
	obj    *goja.Object
}

func (o *object) Property(name string) definition.Value {
	o.module.mu.Lock()
	defer o.module.mu.Unlock()

	v := o.obj.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	return &value{module: o.module, v: v}
}

// value reads a property under the module lock with script conversions
type value struct {
	module *module
	v      goja.Value
}

func (p *value) Number() (float64, bool) {
	p.module.mu.Lock()
	defer p.module.mu.Unlock()
	if !goja.IsNumber(p.v) {
		return 0, false
	}
	return p.v.ToFloat(), true
}

func (p *value) Truthy() bool {
	p.module.mu.Lock()
	defer p.module.mu.Unlock()
	return p.v.ToBoolean()
}

// Strings keeps the string elements of an array and skips the rest
func (p *value) Strings() ([]string, bool) {
	p.module.mu.Lock()
	defer p.module.mu.Unlock()

	arr, ok := p.v.(*goja.Object)
	if !ok || arr.ClassName() != "Array" {
		return nil, false
	}
	n := arr.Get("length").ToInteger()
	items := make([]string, 0, n)
	for i := int64(0); i < n; i++ {
		item := arr.Get(strconv.FormatInt(i, 10))
		if item != nil && goja.IsString(item) {
			items = append(items, item.String())
		}
	}
	return items, true
}

func (o *object) Method(name string) (definition.Method, bool) {
	o.module.mu.Lock()
	defer o.module.mu.Unlock()

	fn, ok := goja.AssertFunction(o.obj.Get(name))
	if !ok {
		return nil, false
	}

	m := o.module
	this := o.obj
	return func(args ...any) (bool, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		values := make([]goja.Value, len(args))
		for i, arg := range args {
			values[i] = toValue(m.vm, arg)
		}
		result, err := fn(this, values...)
		if err != nil {
			return false, scriptErr(err)
		}
		return result.ToBoolean(), nil
	}, true
}

// toValue builds real JS arrays and objects so predicates can use the full
// Array and Object prototypes on their arguments.
func toValue(vm *goja.Runtime, arg any) goja.Value {
	switch v := arg.(type) {
	case nil:
		return goja.Null()
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = toValue(vm, item)
		}
		return vm.NewArray(items...)
	case []string:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = item
		}
		return vm.NewArray(items...)
	case map[string]any:
		obj := vm.NewObject()
		for key, item := range v {
			_ = obj.Set(key, toValue(vm, item))
		}
		return obj
	default:
		return vm.ToValue(v)
	}
}

func scriptErr(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return &ScriptError{Message: exc.Value().String(), Stack: exc.String()}
	}
	return err
}
