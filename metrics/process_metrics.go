// Copyright (c) 2025 The Stakeline developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ioCollector exports the I/O counters of /proc/<pid>/io. CPU, memory
// and fd counts come from the default process collector already; the
// io file is the one piece it leaves out. See proc_pid_io(5).
type ioCollector struct {
	pid int

	readSyscalls  *prometheus.Desc
	writeSyscalls *prometheus.Desc
	readBytes     *prometheus.Desc
	writeBytes    *prometheus.Desc
}

func newIOCollector() *ioCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "process", name), help, nil, nil)
	}
	return &ioCollector{
		pid:           os.Getpid(),
		readSyscalls:  desc("read_syscalls_total", "Read syscalls issued by the process."),
		writeSyscalls: desc("write_syscalls_total", "Write syscalls issued by the process."),
		readBytes:     desc("read_bytes_total", "Bytes fetched from the storage layer."),
		writeBytes:    desc("write_bytes_total", "Bytes sent to the storage layer."),
	}
}

func (c *ioCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.readSyscalls
	ch <- c.writeSyscalls
	ch <- c.readBytes
	ch <- c.writeBytes
}

func (c *ioCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := readProcIO(c.pid)
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.readSyscalls, prometheus.CounterValue, float64(stats.readSyscalls))
	ch <- prometheus.MustNewConstMetric(c.writeSyscalls, prometheus.CounterValue, float64(stats.writeSyscalls))
	ch <- prometheus.MustNewConstMetric(c.readBytes, prometheus.CounterValue, float64(stats.readBytes))
	ch <- prometheus.MustNewConstMetric(c.writeBytes, prometheus.CounterValue, float64(stats.writeBytes))
}

type procIO struct {
	readSyscalls  int64
	writeSyscalls int64
	readBytes     int64
	writeBytes    int64
}

func readProcIO(pid int) (*procIO, error) {
	file, err := os.Open(fmt.Sprintf("/proc/%d/io", pid))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stats := &procIO{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		value, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			logger.Warn("unable to parse io value", "line", line, "err", err)
			continue
		}
		switch {
		case strings.HasPrefix(line, "syscr:"):
			stats.readSyscalls = value
		case strings.HasPrefix(line, "syscw:"):
			stats.writeSyscalls = value
		case strings.HasPrefix(line, "read_bytes:"):
			stats.readBytes = value
		case strings.HasPrefix(line, "write_bytes:"):
			stats.writeBytes = value
		}
	}
	return stats, scanner.Err()
}

var ioRegistered atomic.Bool

func registerIOCollector() {
	if ioRegistered.CompareAndSwap(false, true) {
		prometheus.MustRegister(newIOCollector())
	}
}
