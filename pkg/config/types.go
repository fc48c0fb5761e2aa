package config

// OutputMode selects how a channel's ring-buffer is exposed to the consumer.
type OutputMode string

const (
	OutputModeSplice OutputMode = "splice"
	OutputModeMmap   OutputMode = "mmap"
)

func (m OutputMode) String() string {
	return string(m)
}

// ChannelDefaults holds the attribute values applied to a per-cpu channel
// when the caller does not specify them explicitly.
type ChannelDefaults struct {
	SubBufSize          uint64     `yaml:"subbuf_size" validate:"required"`
	SubBufCount         uint64     `yaml:"subbuf_count" validate:"required"`
	SwitchTimerInterval uint32     `yaml:"switch_timer_interval"`
	ReadTimerInterval   uint32     `yaml:"read_timer_interval"`
	Output              OutputMode `yaml:"output" validate:"required"`
}

// MetadataChannelDefaults holds the attributes applied to the distinguished
// per-session metadata channel, which is always per-cpu=false and mmap.
type MetadataChannelDefaults struct {
	SubBufSize  uint64 `yaml:"subbuf_size" validate:"required"`
	SubBufCount uint64 `yaml:"subbuf_count" validate:"required"`
}

// ConsumerEndpoints describes where the 32-bit and 64-bit consumer daemons
// can be reached. A blank path means "not available for this bitness".
type ConsumerEndpoints struct {
	Socket32Path string `yaml:"socket_32_path"`
	Socket64Path string `yaml:"socket_64_path"`
	TracePath    string `yaml:"trace_path" validate:"required"`
	SubDir       string `yaml:"subdir"`
}

// ProtocolSupport holds the tracer-application protocol major version that
// this session daemon accepts. Registrations carrying any other major are
// rejected at the registry boundary.
type ProtocolSupport struct {
	Major uint32 `yaml:"major" validate:"required"`
}

// FDBudget holds the process-wide descriptor ceiling for the APPS class.
type FDBudget struct {
	AppsLimit int64 `yaml:"apps_limit" validate:"required"`
}

// AppsSocket describes the private unix socket applications connect to
// with their registration message, per spec.md §3's "a private command
// socket" per app.
type AppsSocket struct {
	Path string `yaml:"path" validate:"required"`
}
