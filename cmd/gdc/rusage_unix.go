// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd || solaris
// +build linux darwin dragonfly freebsd netbsd openbsd solaris

package main

import (
	"log"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// printRusage logs the CPU time and peak memory of the process.
func printRusage() {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		log.Printf("getrusage: %v", err)
		return
	}
	// ru_maxrss is in bytes on darwin and in kilobytes elsewhere.
	maxrss := int64(ru.Maxrss)
	if runtime.GOOS != "darwin" {
		maxrss *= 1024
	}
	user := time.Duration(ru.Utime.Nano())
	sys := time.Duration(ru.Stime.Nano())
	log.Printf("user %v, sys %v, max rss %d KiB", user, sys, maxrss/1024)
}
