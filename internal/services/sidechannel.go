package services

import (
	"github.com/sirupsen/logrus"
)

// dispatchDetached runs fn on its own goroutine. Side effects like email
// and cache invalidation never delay or fail the response that triggered
// them; failures are logged and swallowed.
func dispatchDetached(logger *logrus.Logger, name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("side_effect", name).Errorf("Side effect panicked: %v", r)
			}
		}()
		if err := fn(); err != nil {
			logger.WithError(err).WithField("side_effect", name).Warn("Side effect failed")
		}
	}()
}
