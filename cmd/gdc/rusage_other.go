// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd || solaris)
// +build !linux,!darwin,!dragonfly,!freebsd,!netbsd,!openbsd,!solaris

package main

import "log"

func printRusage() {
	log.Print("resource usage is not available on this platform")
}
