// Package registry is a small reflection-based service container used
// by cmd/pspputil to wire a logger, a catalog store, and a telemetry
// collector together without a package-level global.
// Adapted nearly verbatim from teacher's di/container.go — the
// generic register/resolve shape needs no domain-specific change,
// only the doc comments describing what gets registered.
package registry

import (
	"fmt"
	"reflect"
	"sync"
)

// Container holds singleton services and factories keyed by type.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]interface{}
}

// New creates an empty Container.
func New() *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]interface{}),
	}
}

// Register stores service under its dereferenced type. Registering
// the same type twice is an error.
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := reflect.TypeOf(service)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if _, exists := c.services[t]; exists {
		return fmt.Errorf("registry: service already registered for type %v", t)
	}

	c.services[t] = service
	return nil
}

// RegisterFactory stores a constructor function, called lazily on
// first Resolve. factory must return (T) or (T, error).
func (c *Container) RegisterFactory(factory interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := reflect.TypeOf(factory)
	if t.Kind() != reflect.Func {
		return fmt.Errorf("registry: factory must be a function")
	}
	if t.NumOut() != 1 && t.NumOut() != 2 {
		return fmt.Errorf("registry: factory must return exactly one or two values (service, error)")
	}

	serviceType := t.Out(0)
	if _, exists := c.factories[serviceType]; exists {
		return fmt.Errorf("registry: factory already registered for type %v", serviceType)
	}

	c.factories[serviceType] = factory
	return nil
}

// Resolve fills target (a pointer) with the registered service of its
// type, calling the registered factory if no direct service exists.
func (c *Container) Resolve(target interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr {
		return fmt.Errorf("registry: target must be a pointer")
	}

	targetType := targetValue.Elem().Type()

	serviceType := targetType
	if serviceType.Kind() == reflect.Ptr {
		serviceType = serviceType.Elem()
	}
	if service, exists := c.services[serviceType]; exists && reflect.TypeOf(service).AssignableTo(targetType) {
		targetValue.Elem().Set(reflect.ValueOf(service))
		return nil
	}

	if factory, exists := c.factories[targetType]; exists {
		factoryValue := reflect.ValueOf(factory)
		results := factoryValue.Call(nil)

		if len(results) == 2 && !results[1].IsNil() {
			return results[1].Interface().(error)
		}

		targetValue.Elem().Set(results[0])
		return nil
	}

	return fmt.Errorf("registry: no service or factory registered for type %v", targetType)
}

// Clear removes every registered service and factory.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]interface{})
}
