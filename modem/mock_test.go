package modem_test

import (
	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/netmon/modem"
)

type MockSequenceBuilder struct {
	transport *modem.MockTransport
	calls     []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{
		transport: transport,
		calls:     []any{},
	}
}

// expect appends a write of the command followed by a read returning
// the canned response.
func (b *MockSequenceBuilder) expect(cmd, response string) *MockSequenceBuilder {
	wire := cmd + "\r"
	b.calls = append(b.calls,
		b.transport.EXPECT().Write([]byte(wire)).Return(len(wire), nil),
		b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			copy(p, response)
			return len(response), nil
		}),
	)
	return b
}

func (b *MockSequenceBuilder) AT() *MockSequenceBuilder {
	return b.expect("AT", "AT\r\nOK\r\n")
}

func (b *MockSequenceBuilder) ATFails() *MockSequenceBuilder {
	return b.expect("AT", "ERROR\r\n")
}

func (b *MockSequenceBuilder) EchoOff() *MockSequenceBuilder {
	return b.expect("ATE0", "ATE0\r\nOK\r\n")
}

func (b *MockSequenceBuilder) VerboseErrors() *MockSequenceBuilder {
	return b.expect("AT+CMEE=2", "OK\r\n")
}

// URCSetup covers the best-effort registration URC and serving-cell
// format commands issued at the end of init.
func (b *MockSequenceBuilder) URCSetup() *MockSequenceBuilder {
	b.expect("AT+CREG=2", "OK\r\n")
	b.expect("AT+CGREG=2", "OK\r\n")
	b.expect("AT+CEREG=2", "OK\r\n")
	b.expect("AT+C5GREG=2", "OK\r\n")
	b.expect(`AT+QENG="servingcell",1`, "OK\r\n")
	return b
}

func (b *MockSequenceBuilder) Build() []any {
	return b.calls
}

// initMockCalls is the full successful initialization exchange.
func initMockCalls(transport *modem.MockTransport) []any {
	return NewMockSequence(transport).
		AT().
		EchoOff().
		VerboseErrors().
		URCSetup().
		Build()
}
