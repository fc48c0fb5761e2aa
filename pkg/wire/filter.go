package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/cilium/ebpf/asm"
)

// ValidateFilterBytecode sanity-checks the bytecode attached to an
// event rule before it crosses the wire to set_filter, per §3's
// "Identity: ... filter bytecode bytes" and §9's note that a
// composite key's filter field is opaque to everything except the
// app's own tracer: this daemon never interprets the bytecode, it
// only confirms it disassembles as well-formed instructions so a
// malformed filter is rejected here rather than by the app.
func ValidateFilterBytecode(bytecode []byte) error {
	if len(bytecode) == 0 {
		return nil
	}

	var insns asm.Instructions
	if err := insns.Unmarshal(bytes.NewReader(bytecode), binary.LittleEndian); err != nil {
		return fmt.Errorf("%w: filter bytecode: %v", ErrInvalid, err)
	}
	if len(insns) == 0 {
		return fmt.Errorf("%w: filter bytecode: no instructions", ErrInvalid)
	}
	return nil
}
