package dxtex

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
	"github.com/gogpu/gpucontext"
	"github.com/google/uuid"

	"github.com/gogpu/dxtex/dxgi"
)

// hwFormats are the destination formats Compress routes to the
// compression device.
var hwFormats = []dxgi.Format{
	dxgi.FormatBC6HTypeless,
	dxgi.FormatBC6HUF16,
	dxgi.FormatBC6HSF16,
	dxgi.FormatBC7Typeless,
	dxgi.FormatBC7Unorm,
	dxgi.FormatBC7UnormSRGB,
}

// ShouldAccel reports whether Compress sends format f to the compression
// device.
func ShouldAccel(f dxgi.Format) bool {
	return slices.Contains(hwFormats, f)
}

var (
	errNoHostDevice = errors.New("device provider exposes no device")
	errDeviceClosed = errors.New("device is closed")
)

// Device is a block compression device. It spreads block rows across a
// persistent worker pool, and may be bound to a host GPU device through a
// gpucontext.DeviceProvider so that applications sharing one GPU context
// report a single adapter.
//
// Output is byte-identical to the software path. A Device is safe for
// concurrent use; Close it when done.
type Device struct {
	id       uuid.UUID
	pool     *workerpool.Pool
	provider gpucontext.DeviceProvider
	log      atomic.Pointer[slog.Logger]

	// mu is held for reading while work runs on pool and for writing while
	// Close stops it.
	mu     sync.RWMutex
	closed bool
}

// DeviceOption configures NewDevice.
type DeviceOption func(*deviceOptions)

type deviceOptions struct {
	workers  int
	provider gpucontext.DeviceProvider
}

// WithWorkers sets the number of compression workers. Zero or less uses
// GOMAXPROCS.
func WithWorkers(n int) DeviceOption {
	return func(o *deviceOptions) {
		o.workers = n
	}
}

// WithDeviceProvider binds the device to a host GPU context.
func WithDeviceProvider(p gpucontext.DeviceProvider) DeviceOption {
	return func(o *deviceOptions) {
		o.provider = p
	}
}

// NewDevice creates a compression device. It fails with
// ErrDeviceUnavailable when bound to a provider that has no device.
func NewDevice(opts ...DeviceOption) (*Device, error) {
	var o deviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.provider != nil && o.provider.Device() == nil {
		return nil, newError("NewDevice", KindDeviceUnavailable, DXGIErrorUnsupported, errNoHostDevice)
	}

	d := &Device{
		id:       uuid.New(),
		pool:     workerpool.New(o.workers),
		provider: o.provider,
	}
	d.log.Store(Logger())
	d.logger().Info("dxtex: compression device created",
		"id", d.id, "workers", d.pool.NumWorkers(), "adapter", d.adapterName())
	return d, nil
}

// ID returns the identity assigned at creation.
func (d *Device) ID() uuid.UUID { return d.id }

// Workers returns the size of the worker pool.
func (d *Device) Workers() int { return d.pool.NumWorkers() }

// AdapterInfo returns the adapter of the bound host context. The second
// result is false for an unbound device.
func (d *Device) AdapterInfo() (gpucontext.AdapterInfo, bool) {
	if d.provider == nil {
		return gpucontext.AdapterInfo{}, false
	}
	return d.provider.AdapterInfo(), true
}

func (d *Device) adapterName() string {
	if info, ok := d.AdapterInfo(); ok {
		return info.Name
	}
	return "cpu"
}

// SetLogger replaces the device logger. Nil restores the silent logger.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	d.log.Store(l)
}

func (d *Device) logger() *slog.Logger {
	return d.log.Load()
}

// Close waits for in-flight compressions, then stops the workers.
// Compressing with a closed device fails with ErrDeviceUnavailable. Closing
// twice does nothing.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.pool.Close()
	d.logger().Debug("dxtex: compression device closed", "id", d.id)
}

// acquire keeps the workers running until release is called. It fails if
// d is nil or closed.
func (d *Device) acquire(op string) (release func(), err error) {
	if d == nil {
		return nil, newError(op, KindDeviceUnavailable, DXGIErrorUnsupported, errors.New("nil device"))
	}
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return nil, newError(op, KindDeviceUnavailable, DXGIErrorUnsupported, errDeviceClosed)
	}
	return d.mu.RUnlock, nil
}

// DeviceFactory creates the process-wide compression device.
type DeviceFactory func() (*Device, error)

func defaultDeviceFactory() (*Device, error) {
	return NewDevice()
}

// hwState guards one factory invocation. Both the device and the error are
// cached, so a failed creation is not retried.
type hwState struct {
	get     func() (*Device, error)
	created atomic.Pointer[Device]
}

func newHWState(factory DeviceFactory) *hwState {
	s := &hwState{}
	s.get = sync.OnceValues(func() (*Device, error) {
		d, err := factory()
		if err != nil {
			Logger().Warn("dxtex: compression device unavailable", "error", err)
			return nil, err
		}
		if d == nil {
			return nil, errNoHostDevice
		}
		s.created.Store(d)
		return d, nil
	})
	return s
}

var hwDevice atomic.Pointer[hwState]

func init() {
	hwDevice.Store(newHWState(defaultDeviceFactory))
}

// SetDeviceFactory replaces the factory HWDevice uses and forgets the
// current process device, closing it if it was created. Nil restores the
// default factory. The old device is closed once compressions already
// running on it finish.
func SetDeviceFactory(f DeviceFactory) {
	if f == nil {
		f = defaultDeviceFactory
	}
	old := hwDevice.Swap(newHWState(f))
	if d := old.created.Load(); d != nil {
		d.Close()
	}
}

// HWDevice returns the process-wide compression device, creating it on
// first use. Creation runs at most once per factory; its outcome, success
// or failure, is cached.
func HWDevice() (*Device, error) {
	d, err := hwDevice.Load().get()
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Kind == KindDeviceUnavailable {
			return nil, err
		}
		return nil, newError("HWDevice", KindDeviceUnavailable, DXGIErrorUnsupported, err)
	}
	return d, nil
}

// createdHWDevice returns the process device if it has been created.
func createdHWDevice() *Device {
	return hwDevice.Load().created.Load()
}
