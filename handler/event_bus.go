package handler

import (
	"github.com/qstep/qsee/core"
)

// eventBus reports session events to the log.
type eventBus struct {
	log core.Logger
}

func (eb *eventBus) CallStateChanged(call *core.Call) {
	eb.log.Debugf("call %s: %s (%s)", call.GetID(), call.GetState(), call.GetTimeTaken())
}

func (eb *eventBus) CurrentConnectionChanged(id core.ConnectionID) {
	eb.log.Debugf("current connection: %s", id)
}
