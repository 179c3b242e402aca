// Package controller turns user events into changes of the shared state.
package controller

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/windnow/keytoggle/internal/state"
)

type Controller struct {
	state *state.SharedState
	log   logrus.FieldLogger
}

func New(st *state.SharedState, log logrus.FieldLogger) *Controller {
	return &Controller{
		state: st,
		log:   log,
	}
}

func (c *Controller) OnToggleRequested(id state.WorkerID) {
	on, err := c.state.Toggle(id)
	if err != nil {
		if errors.Is(err, state.ErrUnknownWorker) {
			c.log.Warnf("Переключение пропущено: %s", err.Error())
			return
		}
		c.log.Errorf("Ошибка переключения воркера %s: %s", id, err.Error())
		return
	}
	if on {
		c.log.Infof("Воркер %s включен", id)
	} else {
		c.log.Infof("Воркер %s выключен", id)
	}
}

func (c *Controller) OnQuitRequested() {
	if c.state.RequestShutdown() {
		c.log.Info("Получена команда завершения")
	}
}

// Run dispatches events until a quit is received. A closed channel or a
// cancelled ctx count as quit, so the workers are always released.
func (c *Controller) Run(ctx context.Context, events <-chan Event) {
	defer c.log.Debug("Контроллер завершен")

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Контроллер остановлен по сигналу")
			c.OnQuitRequested()
			return
		case e, ok := <-events:
			if !ok {
				c.log.Info("Источник событий закрыт")
				c.OnQuitRequested()
				return
			}
			c.log.Debugf("Событие: %s", e)
			switch e.Kind {
			case ToggleWorker:
				c.OnToggleRequested(e.Worker)
			case Quit:
				c.OnQuitRequested()
				return
			}
		}
	}
}
