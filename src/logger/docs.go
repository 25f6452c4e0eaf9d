// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides the leveled logging sinks used by the TLS engine.
// It defines the Logger interface with info, debug and error channels and
// two implementations: Leveled for standard-library logging with a level
// threshold, and Discard for silent operation. All implementations are
// thread-safe and fire-and-forget.
package logger
