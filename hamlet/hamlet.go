package hamlet

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// Hamlet is a minimal to-be-or-not-to-be assertion helper.
// Specifications gives both polarities, so tests read as
// "must.Equal(...)" and "wont.Nil(...)".
type Hamlet struct {
	t        *testing.T
	expected bool
}

func Specifications(t *testing.T) (*Hamlet, *Hamlet) {
	t.Helper()
	return &Hamlet{t, true}, &Hamlet{t, false}
}

func (it *Hamlet) observe(outcome bool, form string, details ...interface{}) {
	it.t.Helper()
	if outcome != it.expected {
		it.t.Errorf(form, details...)
	}
}

func (it *Hamlet) True(value bool) {
	it.t.Helper()
	it.observe(value, "Expected %v to be %v!", value, it.expected)
}

func (it *Hamlet) Nil(value interface{}) {
	it.t.Helper()
	it.observe(isNil(value), "Expected %#v nil status to be %v!", value, it.expected)
}

func (it *Hamlet) Equal(expected, actual interface{}) {
	it.t.Helper()
	it.observe(reflect.DeepEqual(expected, actual), "Expected %#v vs. %#v equality to be %v!", expected, actual, it.expected)
}

func (it *Hamlet) Text(expected string, actual interface{}) {
	it.t.Helper()
	it.observe(expected == fmt.Sprintf("%v", actual), "Expected text %q vs. %q equality to be %v!", expected, actual, it.expected)
}

func (it *Hamlet) Contain(fragment, full string) {
	it.t.Helper()
	it.observe(strings.Contains(full, fragment), "Expected %q to contain %q == %v!", full, fragment, it.expected)
}

func (it *Hamlet) Panic(task func()) {
	it.t.Helper()
	defer func() {
		it.t.Helper()
		status := recover()
		it.observe(status != nil, "Expected panic status %v to be %v!", status, it.expected)
	}()
	task()
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return reflected.IsNil()
	}
	return false
}
