package cache

import "fmt"

// A ConfigError reports a cache geometry or option that cannot be built.
type ConfigError struct {
	Field  string
	Value  uint64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid cache config %s=%d: %s",
		e.Field, e.Value, e.Reason)
}

// A ProtocolViolation reports a unit being driven against its port contract,
// for example a request arriving while another one is still in flight. It is
// never recovered from; units panic with it.
type ProtocolViolation struct {
	Unit      string
	Channel   string
	Timestamp uint64
	Reason    string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation in %s on %s at cycle %d: %s",
		e.Unit, e.Channel, e.Timestamp, e.Reason)
}
