// Copyright (c) 2024 mStar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package alsa reads mixer events and volume straight from the kernel's
// sound control devices (/dev/snd/controlC*).
//
// Structure layouts are those of 64 bit Linux.
package alsa

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"github.com/mstarongithub/line/common/audio"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const (
	deviceGlob   = "/dev/snd/controlC*"
	devicePrefix = "/dev/snd/controlC"

	elemIDSize    = 64
	elemNameSize  = 44
	eventSize     = 72
	elemInfoSize  = 272
	elemValueSize = 1224

	// Offsets of the value unions
	elemInfoValueOffset  = 80
	elemValueValueOffset = 72

	ifaceMixer      = 2
	elemTypeInteger = 2
)

var (
	ErrClosed      = errors.New("control closed")
	ErrNameTooLong = errors.New("element name too long")
	ErrShortEvent  = errors.New("short event read")
	ErrNotInteger  = errors.New("element is not an integer control")
)

var (
	ioctlSubscribeEvents = iowr('U', 0x16, 4)
	ioctlElemInfo        = iowr('U', 0x11, elemInfoSize)
	ioctlElemRead        = iowr('U', 0x12, elemValueSize)
)

// iowr builds a read-write ioctl request number like the kernel's _IOWR macro
func iowr(kind byte, nr byte, size uintptr) uintptr {
	const dirReadWrite = 3
	return dirReadWrite<<30 | size<<16 | uintptr(kind)<<8 | uintptr(nr)
}

// System reads volume from one configured mixer element and listens to every card
type System struct {
	mixerCard int
	element   string
}

var _ audio.System = (*System)(nil)

func New(mixerCard int, element string) *System {
	return &System{mixerCard: mixerCard, element: element}
}

func (s *System) Cards() ([]int, error) {
	paths, err := filepath.Glob(deviceGlob)
	if err != nil {
		return nil, err
	}
	cards := []int{}
	for _, path := range paths {
		card, err := strconv.Atoi(strings.TrimPrefix(path, devicePrefix))
		if err != nil {
			logrus.WithField("path", path).Debugln("Ignoring odd control device")
			continue
		}
		cards = append(cards, card)
	}
	sort.Ints(cards)
	return cards, nil
}

type control struct {
	card int
	fd   int
}

func (s *System) Open(card int) (audio.Control, error) {
	fd, err := openCard(card)
	if err != nil {
		return nil, err
	}
	subscribe := int32(1)
	if err := ioctl(fd, ioctlSubscribeEvents, unsafe.Pointer(&subscribe)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("subscribing to card %d: %w", card, err)
	}
	return &control{card: card, fd: fd}, nil
}

func openCard(card int) (int, error) {
	path := devicePrefix + strconv.Itoa(card)
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("opening %s: %w", path, err)
	}
	return fd, nil
}

func (c *control) Card() int {
	return c.card
}

func (c *control) ReadEvent() (audio.Event, error) {
	if c.fd < 0 {
		return audio.Event{}, ErrClosed
	}
	buf := make([]byte, eventSize)
	n, err := unix.Read(c.fd, buf)
	if err != nil {
		return audio.Event{}, fmt.Errorf("reading card %d: %w", c.card, err)
	}
	return parseEvent(c.card, buf[:n])
}

func (c *control) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

// Wait polls all controls at once. Controls reporting an error condition
// count as ready so that the following read surfaces the error
func (s *System) Wait(controls []audio.Control) ([]audio.Control, error) {
	fds := make([]unix.PollFd, len(controls))
	for i, ctl := range controls {
		c, ok := ctl.(*control)
		if !ok {
			return nil, fmt.Errorf("foreign control for card %d", ctl.Card())
		}
		if c.fd < 0 {
			return nil, ErrClosed
		}
		fds[i] = unix.PollFd{Fd: int32(c.fd), Events: unix.POLLIN}
	}

	for {
		_, err := unix.Poll(fds, -1)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("polling controls: %w", err)
		}
		break
	}

	ready := []audio.Control{}
	for i, fd := range fds {
		if fd.Revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			ready = append(ready, controls[i])
		}
	}
	return ready, nil
}

// Volume reads the first channel of the configured element at the given index
func (s *System) Volume(index uint32) (int, error) {
	fd, err := openCard(s.mixerCard)
	if err != nil {
		return 0, err
	}
	defer unix.Close(fd)

	info := make([]byte, elemInfoSize)
	if err := encodeElemID(info, ifaceMixer, s.element, index); err != nil {
		return 0, err
	}
	if err := ioctl(fd, ioctlElemInfo, unsafe.Pointer(&info[0])); err != nil {
		return 0, fmt.Errorf("querying %q: %w", s.element, err)
	}
	elemType, count, minRaw, maxRaw := parseInfo(info)
	if elemType != elemTypeInteger || count < 1 {
		return 0, fmt.Errorf("%w: %q", ErrNotInteger, s.element)
	}

	value := make([]byte, elemValueSize)
	// The kernel filled in the numeric id, reuse it
	copy(value[:elemIDSize], info[:elemIDSize])
	if err := ioctl(fd, ioctlElemRead, unsafe.Pointer(&value[0])); err != nil {
		return 0, fmt.Errorf("reading %q: %w", s.element, err)
	}
	raw := firstChannel(value)
	logrus.WithFields(logrus.Fields{
		"element": s.element,
		"raw":     raw,
		"min":     minRaw,
		"max":     maxRaw,
	}).Debugln("Read volume")
	return audio.Level(raw, minRaw, maxRaw)
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// encodeElemID writes an element id addressed by interface, name and index
func encodeElemID(buf []byte, iface int32, name string, index uint32) error {
	if len(name) >= elemNameSize {
		return fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}
	order := binary.NativeEndian
	order.PutUint32(buf[0:], 0)
	order.PutUint32(buf[4:], uint32(iface))
	order.PutUint32(buf[8:], 0)
	order.PutUint32(buf[12:], 0)
	clear(buf[16 : 16+elemNameSize])
	copy(buf[16:], name)
	order.PutUint32(buf[16+elemNameSize:], index)
	return nil
}

func parseEvent(card int, buf []byte) (audio.Event, error) {
	if len(buf) < eventSize {
		return audio.Event{}, fmt.Errorf("%w: %d of %d bytes", ErrShortEvent, len(buf), eventSize)
	}
	order := binary.NativeEndian
	id := buf[8 : 8+elemIDSize]
	name := id[16 : 16+elemNameSize]
	if end := strings.IndexByte(string(name), 0); end >= 0 {
		name = name[:end]
	}
	return audio.Event{
		Card:  card,
		Type:  audio.EventType(order.Uint32(buf[0:])),
		Mask:  order.Uint32(buf[4:]),
		NumID: order.Uint32(id[0:]),
		Iface: int32(order.Uint32(id[4:])),
		Name:  string(name),
		Index: order.Uint32(id[16+elemNameSize:]),
	}, nil
}

func parseInfo(buf []byte) (elemType int32, count int, minRaw, maxRaw int64) {
	order := binary.NativeEndian
	elemType = int32(order.Uint32(buf[elemIDSize:]))
	count = int(order.Uint32(buf[elemIDSize+8:]))
	minRaw = int64(order.Uint64(buf[elemInfoValueOffset:]))
	maxRaw = int64(order.Uint64(buf[elemInfoValueOffset+8:]))
	return elemType, count, minRaw, maxRaw
}

func firstChannel(buf []byte) int64 {
	return int64(binary.NativeEndian.Uint64(buf[elemValueValueOffset:]))
}
