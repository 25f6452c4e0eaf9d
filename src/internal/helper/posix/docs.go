// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides POSIX-compliant helper functions for
// cross-platform compatibility, currently the executable-name handling
// used by the probe CLI's usage strings.
package posix
