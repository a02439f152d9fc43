// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StartTime returns the start time of pid in clock ticks since boot,
// read from field 22 of /proc/<pid>/stat. A (pid, start time) pair
// uniquely names a process even after the kernel reuses the pid.
func StartTime(pid int) (uint64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0, fmt.Errorf("reading process stat for pid %d: %w", pid, err)
	}
	start, err := parseStartTime(string(data))
	if err != nil {
		return 0, fmt.Errorf("parsing process stat for pid %d: %w", pid, err)
	}
	return start, nil
}

// parseStartTime extracts the starttime field from a /proc/<pid>/stat
// line. The comm field (2) is parenthesized and may contain spaces and
// even ')' characters, so fields are counted from the *last* ')' in
// the line: state is the first field after it, starttime the 20th.
func parseStartTime(stat string) (uint64, error) {
	closing := strings.LastIndexByte(stat, ')')
	if closing < 0 {
		return 0, fmt.Errorf("malformed stat line: no comm delimiter")
	}

	fields := strings.Fields(stat[closing+1:])
	// Field numbering in proc(5) is 1-based with starttime at 22;
	// after comm (field 2) the remainder starts at field 3.
	const startTimeIndex = 22 - 3
	if len(fields) <= startTimeIndex {
		return 0, fmt.Errorf("malformed stat line: %d fields after comm", len(fields))
	}

	start, err := strconv.ParseUint(fields[startTimeIndex], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed starttime field %q: %w", fields[startTimeIndex], err)
	}
	return start, nil
}
