// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/H0llyW00dzZ/tls-client-engine/src/logger"
	"github.com/stretchr/testify/assert"
)

func TestLeveledThreshold(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		log       func(l *logger.Leveled)
		wantMatch string
		wantEmpty bool
	}{
		{
			name:      "error passes at error level",
			level:     logger.LevelError,
			log:       func(l *logger.Leveled) { l.Error("boom %d", 42) },
			wantMatch: "ERROR: boom 42",
		},
		{
			name:      "info suppressed at error level",
			level:     logger.LevelError,
			log:       func(l *logger.Leveled) { l.Info("hello") },
			wantEmpty: true,
		},
		{
			name:      "debug suppressed at info level",
			level:     logger.LevelInfo,
			log:       func(l *logger.Leveled) { l.Debug("noisy") },
			wantEmpty: true,
		},
		{
			name:      "debug passes at debug level",
			level:     logger.LevelDebug,
			log:       func(l *logger.Leveled) { l.Debug("noisy") },
			wantMatch: "DEBUG: noisy",
		},
		{
			name:      "everything suppressed at off",
			level:     logger.LevelOff,
			log:       func(l *logger.Leveled) { l.Error("boom") },
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := logger.NewLeveled(&buf, tt.level)
			tt.log(l)

			if tt.wantEmpty {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.wantMatch)
			}
		})
	}
}

func TestLeveledSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewLeveled(&buf, logger.LevelError)

	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.SetLevel(logger.LevelDebug)
	l.Info("kept")
	assert.Contains(t, buf.String(), "INFO: kept")
}

func TestLeveledSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := logger.NewLeveled(&first, logger.LevelInfo)

	l.Info("one")
	l.SetOutput(&second)
	l.Info("two")

	assert.Contains(t, first.String(), "one")
	assert.NotContains(t, first.String(), "two")
	assert.Contains(t, second.String(), "two")
}

func TestLeveledConcurrent(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewLeveled(&buf, logger.LevelDebug)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Debug("line")
			}
		}()
	}
	wg.Wait()

	lines := strings.Count(buf.String(), "\n")
	assert.Equal(t, 1600, lines)
}

func TestDiscard(t *testing.T) {
	var d logger.Discard
	// Must never panic or emit anything.
	d.Info("a")
	d.Debug("b")
	d.Error("c")
}
