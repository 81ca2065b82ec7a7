package builtins

import (
	"phonscript/pkg/events"
	"phonscript/pkg/vm"
)

// EventsInitializer exposes the runtime's event hub to scripts as the
// global Events object. Script handlers are pinned in the runtime heap for
// as long as they are subscribed.
type EventsInitializer struct{}

func (e *EventsInitializer) Name() string {
	return "Events"
}

func (e *EventsInitializer) Priority() int {
	return PriorityEvents
}

type eventBinding struct {
	hub *events.Hub[vm.Value]
}

func (e *EventsInitializer) InitRuntime(ctx *RuntimeContext) error {
	rt := ctx.Runtime
	b := &eventBinding{hub: ctx.Events}

	obj := rt.NewPlainObject()
	rt.RegisterMethod(obj, "Events.subscribe", b.subscribe, 2)
	rt.RegisterMethod(obj, "Events.unsubscribe", b.unsubscribe, 1)
	rt.RegisterMethod(obj, "Events.publish", b.publish, 1)
	rt.RegisterMethod(obj, "Events.count", b.count, 1)
	return ctx.DefineGlobal("Events", vm.ObjectValue(obj))
}

// Events.subscribe(topic, fn) registers fn and returns the subscription id.
// fn is called with the topic's arguments and an undefined receiver. Its pin
// is released however the subscription ends, from script or from the host.
func (b *eventBinding) subscribe(rt *vm.Runtime) error {
	topic, err := rt.ArgAsString(1)
	if err != nil {
		return err
	}
	fn, err := rt.ArgAsCallable(2)
	if err != nil {
		return err
	}
	ref := rt.Ref(fn)
	id, err := b.hub.SubscribeWithRelease(topic, func(_ string, args []vm.Value) error {
		handler, ok := rt.Deref(ref)
		if !ok {
			return nil
		}
		_, err := rt.CallValue(handler, vm.Undefined, args...)
		return err
	}, func() { rt.Unref(ref) })
	if err != nil {
		rt.Unref(ref)
		return rt.RaiseTypeError("%s", err)
	}
	return rt.Return(vm.NewString(id))
}

// Events.unsubscribe(id) returns whether id named a live subscription.
func (b *eventBinding) unsubscribe(rt *vm.Runtime) error {
	id, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.BooleanValue(b.hub.Unsubscribe(id)))
}

// Events.publish(topic, a1, ..., an) calls every handler of topic in
// subscription order and returns how many ran. An error raised by a handler
// stops delivery and propagates to the publisher.
func (b *eventBinding) publish(rt *vm.Runtime) error {
	topic, err := rt.ArgAsString(1)
	if err != nil {
		return err
	}
	args := rt.Args()[1:]
	n, err := b.hub.Publish(topic, args...)
	if err != nil {
		return err
	}
	return rt.Return(vm.IntegerValue(n))
}

func (b *eventBinding) count(rt *vm.Runtime) error {
	topic, err := rt.ArgToString(1)
	if err != nil {
		return err
	}
	return rt.Return(vm.IntegerValue(b.hub.Count(topic)))
}
