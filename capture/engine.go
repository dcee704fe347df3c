// Copyright (c) 2026 guidoreina. All rights reserved.
// Use of this source code is governed by an MIT license
// that can be found in the LICENSE file.

// Package capture implements the AF_PACKET mmap ring capture engine:
// it negotiates a tpacket ring version against the running kernel,
// polls it for new packets, applies an optional filter, and appends
// matching frames to a pcap capture file.
package capture

import (
	"fmt"
	"net"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/guidoreina/pktsaver/filter"
	"github.com/guidoreina/pktsaver/pcapfile"
)

const (
	ethHeaderLen  = 14
	etherTypeIPv4 = 0x0800

	outputPerm = 0o644
)

// Engine runs one capture session: Setup opens the socket and ring,
// Run drains it until Stop is called or an I/O error occurs.
type Engine struct {
	cfg    Config
	fd     int
	rng    ring
	filter filter.Filter
	writer *pcapfile.PcapWriter

	preallocated bool
	outputPath   string

	stopRequested atomic.Bool
	stats         Stats
	log           *logrus.Logger
}

// Setup validates cfg, opens the raw socket, puts the interface in
// promiscuous mode, negotiates a ring version, and opens the capture
// file. It does not start capturing; call Run for that.
func Setup(cfg Config) (*Engine, error) {
	ringSize := cfg.RingSizeBytes
	if ringSize == 0 {
		ringSize = DefaultRingSize
	}
	if ringSize < MinRingSize || ringSize > MaxRingSize {
		return nil, &ConfigError{Msg: fmt.Sprintf("ring size %d outside [%d, %d]", ringSize, MinRingSize, MaxRingSize)}
	}
	if len(cfg.Interface) >= unix.IFNAMSIZ {
		return nil, &ConfigError{Msg: fmt.Sprintf("interface name %q too long", cfg.Interface)}
	}
	if cfg.OutputPath == "" {
		return nil, &ConfigError{Msg: "output path is empty"}
	}

	e := &Engine{cfg: cfg, log: cfg.Logger, fd: -1}

	if cfg.FilterExpr != "" {
		if err := e.filter.Parse(cfg.FilterExpr); err != nil {
			return nil, &ConfigError{Msg: "invalid filter", Err: err}
		}
	}

	if cfg.MaxPcapFileBytes > 0 {
		// Sanity-check the path is writable before committing to the
		// (potentially large) preallocation; the reference sniffer
		// performs the same probe-then-unlink check.
		f, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_RDWR, outputPerm)
		if err != nil {
			return nil, &SetupError{Msg: "capture file not writable", Err: err}
		}
		f.Close()
		os.Remove(cfg.OutputPath)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, &SetupError{Msg: "socket", Err: err}
	}
	e.fd = fd

	iface, err := net.InterfaceByName(cfg.Interface)
	if err != nil {
		unix.Close(fd)
		return nil, &SetupError{Msg: "interface lookup", Err: err}
	}

	mreq := &unix.PacketMreq{Ifindex: int32(iface.Index), Type: unix.PACKET_MR_PROMISC}
	if err := unix.SetsockoptPacketMreq(fd, unix.SOL_PACKET, unix.PACKET_ADD_MEMBERSHIP, mreq); err != nil {
		unix.Close(fd)
		return nil, &SetupError{Msg: "set promiscuous mode", Err: err}
	}

	rng, err := openRing(fd, ringSize)
	if err != nil {
		unix.Close(fd)
		return nil, &SetupError{Msg: "negotiate ring", Err: err}
	}
	e.rng = rng

	if cfg.MaxPcapFileBytes > 0 {
		w, err := pcapfile.NewBufferedWriter(cfg.MaxPcapFileBytes)
		if err != nil {
			rng.close()
			unix.Close(fd)
			return nil, &SetupError{Msg: "open buffered capture file", Err: err}
		}
		e.writer = w
		e.preallocated = true
		e.outputPath = cfg.OutputPath
	} else {
		w, err := pcapfile.NewIncrementalWriter(cfg.OutputPath, outputPerm)
		if err != nil {
			rng.close()
			unix.Close(fd)
			return nil, &SetupError{Msg: "open streaming capture file", Err: err}
		}
		e.writer = w
	}

	addr := unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  iface.Index,
	}
	if err := unix.Bind(fd, &addr); err != nil {
		e.writer.Close()
		rng.close()
		unix.Close(fd)
		return nil, &SetupError{Msg: "bind", Err: err}
	}

	return e, nil
}

// Stop requests the capture loop to exit after its current poll/
// process step. It is safe to call from a signal handler.
func (e *Engine) Stop() { e.stopRequested.Store(true) }

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats { return e.stats }

// Run polls the ring until Stop is called or an unrecoverable error
// occurs, then flushes and closes the capture file.
func (e *Engine) Run() error {
	pfd := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN | unix.POLLRDNORM | unix.POLLERR}}

	for !e.stopRequested.Load() {
		if !e.rng.userOwns() {
			if _, err := unix.Poll(pfd, -1); err != nil && err != unix.EINTR {
				return e.shutdown(&IoError{Msg: "poll", Err: err})
			}
			continue
		}

		if !e.rng.process(e.handleFrame) {
			return e.shutdown(nil)
		}
		e.rng.release()
	}

	return e.shutdown(nil)
}

// handleFrame is invoked by the active ring for every captured
// Ethernet frame. It extracts the IPv4 header (if any), applies the
// filter, and writes frames that pass it.
func (e *Engine) handleFrame(meta frameMeta, eth []byte) bool {
	e.stats.Captured++

	if len(eth) < ethHeaderLen {
		e.stats.NonIPDropped++
		return true
	}

	etherType := uint16(eth[12])<<8 | uint16(eth[13])
	if etherType != etherTypeIPv4 {
		if !e.filter.Enabled() {
			return e.writePacket(meta, eth)
		}
		e.stats.NonIPDropped++
		return true
	}

	ipHeader := eth[ethHeaderLen:]
	if len(ipHeader) < 20 {
		e.stats.NonIPDropped++
		return true
	}

	ihl := int(ipHeader[0]&0x0f) * 4
	ipLen := len(ipHeader)
	if ipLen < ihl {
		e.stats.NonIPDropped++
		return true
	}

	if !e.filter.Match(ipHeader, ihl, ipLen) {
		return true
	}
	return e.writePacket(meta, eth)
}

func (e *Engine) writePacket(meta frameMeta, eth []byte) bool {
	if err := e.writer.WritePacket(meta.tsSec, meta.tsUsec, eth); err != nil {
		if e.log != nil {
			e.log.WithError(err).Error("failed to write packet")
		}
		return false
	}
	e.stats.Written++
	return true
}

// shutdown flushes the preallocated backend if one is in use, then
// closes the capture file, unmaps the ring, and closes the socket, in
// that order. The first
// error encountered (including the one the caller is already
// propagating) wins.
func (e *Engine) shutdown(cause error) error {
	if s, err := readKernelStats(e.fd); err == nil {
		e.stats.KernelPackets = s.packets
		e.stats.KernelDrops = s.drops
	}

	if e.log != nil {
		e.log.WithFields(logrus.Fields{
			"captured":       e.stats.Captured,
			"written":        e.stats.Written,
			"non_ip_dropped": e.stats.NonIPDropped,
			"kernel_packets": e.stats.KernelPackets,
			"kernel_drops":   e.stats.KernelDrops,
		}).Info("capture stopped")
	}

	var shutdownErr error
	if e.preallocated {
		f, err := os.OpenFile(e.outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, outputPerm)
		if err != nil {
			shutdownErr = &IoError{Msg: "open output for flush", Err: err}
		} else {
			if err := e.writer.Flush(f); err != nil {
				shutdownErr = &IoError{Msg: "flush capture file", Err: err}
			}
			f.Close()
		}
	}

	if err := e.writer.Close(); err != nil && shutdownErr == nil {
		shutdownErr = &IoError{Msg: "close capture file", Err: err}
	}
	if err := e.rng.close(); err != nil && shutdownErr == nil {
		shutdownErr = &IoError{Msg: "unmap ring", Err: err}
	}
	unix.Close(e.fd)

	if cause != nil {
		return cause
	}
	return shutdownErr
}

func htons(v uint16) uint16 { return v<<8 | v>>8 }

type kernelStats struct {
	packets uint64
	drops   uint64
}

func readKernelStats(fd int) (kernelStats, error) {
	s, err := unix.GetsockoptTpacketStats(fd, unix.SOL_PACKET, unix.PACKET_STATISTICS)
	if err != nil {
		return kernelStats{}, err
	}
	return kernelStats{packets: uint64(s.Packets), drops: uint64(s.Drops)}, nil
}
