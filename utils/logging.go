package utils

import (
	"fmt"

	"github.com/oklahomer/go-kasumi/logger"
)

// BotLogf provides centralized formatted logging tagged with a functional area
func BotLogf(area string, format string, args ...interface{}) {
	logger.Infof("[%s] %s", area, fmt.Sprintf(format, args...))
}

// BotWarnf logs a recoverable problem
func BotWarnf(area string, format string, args ...interface{}) {
	logger.Warnf("[%s] %s", area, fmt.Sprintf(format, args...))
}

// BotErrorf logs a failure that aborted an operation
func BotErrorf(area string, format string, args ...interface{}) {
	logger.Errorf("[%s] %s", area, fmt.Sprintf(format, args...))
}

func BotDebugf(area string, format string, args ...interface{}) {
	logger.Debugf("[%s] %s", area, fmt.Sprintf(format, args...))
}
