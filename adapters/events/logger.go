package events

import (
	"sort"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// kitLogger adapts a go-kit logger to watermill.LoggerAdapter
type kitLogger struct {
	logger log.Logger
}

// NewLoggerAdapter returns a watermill logger writing through logger
func NewLoggerAdapter(logger log.Logger) watermill.LoggerAdapter {
	return &kitLogger{logger: log.With(logger, "component", "watermill")}
}

func (k *kitLogger) Error(msg string, err error, fields watermill.LogFields) {
	level.Error(k.with(fields)).Log("msg", msg, "err", err)
}

func (k *kitLogger) Info(msg string, fields watermill.LogFields) {
	level.Info(k.with(fields)).Log("msg", msg)
}

func (k *kitLogger) Debug(msg string, fields watermill.LogFields) {
	level.Debug(k.with(fields)).Log("msg", msg)
}

// Trace has no go-kit level of its own
func (k *kitLogger) Trace(msg string, fields watermill.LogFields) {
	level.Debug(k.with(fields)).Log("msg", msg, "trace", true)
}

func (k *kitLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &kitLogger{logger: k.with(fields)}
}

func (k *kitLogger) with(fields watermill.LogFields) log.Logger {
	if len(fields) == 0 {
		return k.logger
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(fields)*2)
	for _, key := range keys {
		kv = append(kv, key, fields[key])
	}
	return log.With(k.logger, kv...)
}
