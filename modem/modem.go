package modem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"i4.energy/across/netmon/at"
)

// Modem represents a cellular modem that communicates via AT commands over
// a shared serial line. All transport I/O is funneled through a central
// event loop so exactly one reader owns the port and unsolicited result
// codes are never lost.
type Modem struct {
	// transport provides the physical connection to the modem (serial, TCP, etc.)
	transport Transport
	// config contains the modem configuration settings
	config Config
	// closed indicates if the modem has been shut down
	closed bool

	// urcChan receives Unsolicited Result Codes from the modem
	urcChan chan string
	// commands queues AT command requests for the loop to process
	commands chan *commandRequest

	// loopCancel stops the current event loop; loopDone is closed when it exits
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// commandRequest represents an AT command request to be executed by the loop.
type commandRequest struct {
	// cmd is the AT command string to send to the modem
	cmd string
	// respChan receives the command response from the loop
	respChan chan commandResponse
	// ctx provides timeout and cancellation control for the command
	ctx context.Context
}

// commandResponse contains the result of an AT command execution.
type commandResponse struct {
	// response contains the complete response text from the modem
	response string
	// err contains any error that occurred during command execution
	err error
}

// New creates a new Modem instance with the given configuration.
// It establishes the transport connection, runs the initialization
// sequence (sanity check, echo off, verbose errors, URC enables) and
// starts the event loop.
func New(ctx context.Context, config Config) (*Modem, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	m := &Modem{
		transport: transport,
		config:    config,
		urcChan:   make(chan string, 100), // Buffered to prevent blocking on URCs
		// No queue for commands
		commands: make(chan *commandRequest),
	}

	initCtx := ctx
	if config.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, config.InitTimeout)
		defer cancel()
	}

	if err := m.init(initCtx); err != nil {
		transport.Close()
		return nil, fmt.Errorf("initialize modem: %w", err)
	}

	m.startLoop(ctx)

	return m, nil
}

// URC returns a read-only channel that receives Unsolicited Result Codes.
// These are asynchronous notifications from the modem (registration
// changes, +QIND indications, etc.). The channel is buffered, but may drop
// some URC if not consumed fast enough.
func (m *Modem) URC() <-chan string {
	return m.urcChan
}

// Exec sends an AT command to the modem and waits for the complete
// response, i.e. all lines up to and including the terminal token.
// If the context carries no deadline the configured ATTimeout applies.
//
// The returned error is ErrTimeout when no terminal token arrived in
// time, ErrDeviceError when the modem rejected the command, and
// ErrTransportIO when the serial line itself failed. All are wrapped,
// so callers should test with errors.Is.
func (m *Modem) Exec(ctx context.Context, cmd string) (string, error) {
	if m.closed {
		return "", ErrAlreadyClosed
	}
	if m.transport == nil {
		return "", ErrNotInitialized
	}

	if _, ok := ctx.Deadline(); !ok && m.config.ATTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.ATTimeout)
		defer cancel()
	}

	req := &commandRequest{
		cmd:      cmd,
		respChan: make(chan commandResponse, 1), // Buffered to prevent blocking
		ctx:      ctx,
	}

	select {
	case m.commands <- req:
		// Request queued successfully
	case <-m.loopDone:
		return "", fmt.Errorf("command %q: %w", cmd, ErrTransportIO)
	case <-ctx.Done():
		return "", classifyCtxErr(cmd, ctx.Err())
	}

	select {
	case resp := <-req.respChan:
		if resp.err != nil && (errors.Is(resp.err, context.DeadlineExceeded) || errors.Is(resp.err, context.Canceled)) {
			return resp.response, classifyCtxErr(cmd, resp.err)
		}
		return resp.response, resp.err
	case <-ctx.Done():
		return "", classifyCtxErr(cmd, ctx.Err())
	}
}

func classifyCtxErr(cmd string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("command %q: %w", cmd, ErrTimeout)
	}
	return err
}

// Flush discards any backlog that could desynchronize the next
// command/response exchange: queued URCs and, when the transport
// supports it, bytes sitting in the input buffer.
func (m *Modem) Flush() error {
	for {
		select {
		case <-m.urcChan:
		default:
			if f, ok := m.transport.(InputFlusher); ok {
				return f.ResetInputBuffer()
			}
			return nil
		}
	}
}

// Reopen tears down the event loop and the transport, redials the
// device and restarts the loop. It is the heavy half of the recovery
// path used after repeated command failures.
func (m *Modem) Reopen(ctx context.Context) error {
	if m.closed {
		return ErrAlreadyClosed
	}

	m.loopCancel()
	<-m.loopDone
	m.transport.Close()
	m.transport = nil

	transport, err := m.config.Dialer.Dial(ctx)
	if err != nil {
		return fmt.Errorf("reopen: %w", err)
	}
	m.transport = transport

	initCtx := ctx
	if m.config.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, m.config.InitTimeout)
		defer cancel()
	}
	if err := m.init(initCtx); err != nil {
		transport.Close()
		m.transport = nil
		return fmt.Errorf("reopen: initialize modem: %w", err)
	}

	m.startLoop(ctx)
	return nil
}

// Close shuts down the modem and releases all resources.
// It stops the event loop, closes the transport connection, and marks
// the modem as closed. After calling Close(), the modem cannot be reused.
func (m *Modem) Close() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true

	if m.loopCancel != nil {
		m.loopCancel()
	}

	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}

func (m *Modem) startLoop(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.loopCancel = cancel
	m.loopDone = make(chan struct{})
	go m.loop(loopCtx)
}

// loop is the event loop that handles all transport I/O:
//
// 1. Processes command requests from Exec() calls
// 2. Writes AT commands to the transport
// 3. Reads and classifies response tokens
// 4. Dispatches URCs (and orphaned data lines) to the URC channel
// 5. Returns command responses to waiting Exec() calls
//
// It is the ONLY goroutine reading from the transport while running.
func (m *Modem) loop(ctx context.Context) {
	defer close(m.loopDone)

	transport := m.transport
	scanner := bufio.NewScanner(transport)
	scanner.Split(at.Splitter)

	// Channels for tokens and errors from the scanner goroutine
	tokens := make(chan string, 10)
	scanErrs := make(chan error, 1)

	go func() {
		defer close(tokens)
		for scanner.Scan() {
			token := scanner.Text()
			if token == "" {
				continue
			}
			select {
			case tokens <- token:
			case <-ctx.Done():
				return
			}
		}
		// Scanner stopped - check if there was an error
		if err := scanner.Err(); err != nil {
			select {
			case scanErrs <- err:
			case <-ctx.Done():
			}
		}
	}()

	// Current command being processed
	var currentCmd *commandRequest
	var currentLines []string

	for {
		select {
		case <-ctx.Done():
			if currentCmd != nil {
				currentCmd.respChan <- commandResponse{err: ctx.Err()}
			}
			return

		case req := <-m.commands:
			// A previous command whose caller already gave up may still
			// be pending; its buffered respChan makes dropping it safe.
			currentCmd = req
			currentLines = nil

			wire := strings.TrimSpace(req.cmd) + "\r"
			if _, err := transport.Write([]byte(wire)); err != nil {
				req.respChan <- commandResponse{err: fmt.Errorf("write command %q: %w: %v", req.cmd, ErrTransportIO, err)}
				currentCmd = nil
				continue
			}

		case token, ok := <-tokens:
			if !ok {
				// Token channel closed - scanner hit EOF
				if currentCmd != nil {
					currentCmd.respChan <- commandResponse{err: fmt.Errorf("%w: %v", ErrTransportIO, io.EOF)}
				}
				return
			}

			switch at.Classify(token) {
			case at.TypeURC:
				m.dispatchURC(token)

			case at.TypeFinal:
				if currentCmd == nil {
					// Orphaned final response - ignore
					continue
				}
				currentLines = append(currentLines, token)
				response := strings.Join(currentLines, "\n")

				if token == at.OK {
					currentCmd.respChan <- commandResponse{response: response}
				} else {
					// ERROR or +CME ERROR
					currentCmd.respChan <- commandResponse{
						response: response,
						err:      fmt.Errorf("%w: %s", ErrDeviceError, token),
					}
				}
				currentCmd = nil
				currentLines = nil

			case at.TypeData:
				if currentCmd == nil {
					// Data with no command in flight: an unsolicited report
					// (e.g. +CREG: after a registration change)
					m.dispatchURC(token)
					continue
				}
				currentLines = append(currentLines, token)
			}

			// Check if current command has timed out
			if currentCmd != nil {
				select {
				case <-currentCmd.ctx.Done():
					currentCmd.respChan <- commandResponse{err: currentCmd.ctx.Err()}
					currentCmd = nil
					currentLines = nil
				default:
					// Command still within timeout
				}
			}

		case err := <-scanErrs:
			// Scanner error - the serial line is gone
			if currentCmd != nil {
				currentCmd.respChan <- commandResponse{err: fmt.Errorf("%w: %v", ErrTransportIO, err)}
			}
			return
		}
	}
}

func (m *Modem) dispatchURC(line string) {
	select {
	case m.urcChan <- line:
	default:
		// URC channel is full - drop the URC
	}
}

// init performs the initial setup sequence for the modem hardware.
// It runs before the event loop starts, so it reads the transport
// directly.
func (m *Modem) init(ctx context.Context) error {
	// 1. Wake-up / sanity check
	if err := m.expectOkDirect(ctx, at.CmdAt); err != nil {
		return fmt.Errorf("modem not responding: %w", err)
	}

	if err := m.expectOkDirect(ctx, at.CmdEchoOff); err != nil {
		return fmt.Errorf("could not disable echo: %w", err)
	}

	if err := m.expectOkDirect(ctx, at.CmdVerboseErrors); err != nil {
		return fmt.Errorf("could not enable verbose errors: %w", err)
	}

	// Best effort: registration URCs and the verbose serving-cell format.
	// Older firmware rejects some of these commands.
	for _, cmd := range []string{
		at.CmdEnableCregURC,
		at.CmdEnableCgregURC,
		at.CmdEnableCeregURC,
		at.CmdEnableC5gregURC,
		at.CmdServingCellFmt,
	} {
		_ = m.expectOkDirect(ctx, cmd)
	}

	return nil
}

// execDirect executes an AT command directly on the transport without
// using the channel mechanism. It is used during initialization and
// reopening, when the event loop is not running.
func (m *Modem) execDirect(ctx context.Context, cmd string) (string, error) {
	if m.closed {
		return "", ErrAlreadyClosed
	}
	if m.transport == nil {
		return "", ErrNotInitialized
	}

	if _, ok := ctx.Deadline(); !ok && m.config.ATTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.ATTimeout)
		defer cancel()
	}

	wire := strings.TrimSpace(cmd) + "\r"
	if _, err := m.transport.Write([]byte(wire)); err != nil {
		return "", fmt.Errorf("write command %q: %w", cmd, err)
	}

	// Serial reads have no deadline, so the scan runs in its own
	// goroutine and the context decides how long we wait. A silent
	// device must not hang initialization or reopen. The goroutine
	// unblocks when the transport is closed.
	result := make(chan directResult, 1)
	go func() {
		result <- m.readDirect(m.transport)
	}()

	select {
	case r := <-result:
		return r.response, r.err
	case <-ctx.Done():
		return "", classifyCtxErr(cmd, ctx.Err())
	}
}

type directResult struct {
	response string
	err      error
}

// readDirect reads tokens off the transport until a final result code
// arrives. URCs are discarded; the event loop is not running yet.
func (m *Modem) readDirect(transport Transport) directResult {
	scanner := bufio.NewScanner(transport)
	scanner.Split(at.Splitter)

	var lines []string

	for {
		if !scanner.Scan() {
			response := strings.Join(lines, "\n")
			if err := scanner.Err(); err != nil {
				return directResult{response, fmt.Errorf("%w: %v", ErrTransportIO, err)}
			}
			return directResult{response, fmt.Errorf("%w: %v", ErrTransportIO, io.EOF)}
		}

		token := scanner.Text()
		if token == "" {
			continue
		}

		switch at.Classify(token) {
		case at.TypeFinal:
			lines = append(lines, token)
			response := strings.Join(lines, "\n")
			if token == at.OK {
				return directResult{response, nil}
			}
			return directResult{response, fmt.Errorf("%w: %s", ErrDeviceError, token)}

		case at.TypeData:
			lines = append(lines, token)
		}
	}
}

// expectOkDirect executes an AT command and validates that the response
// contains "OK". Used during initialization for configuration commands.
func (m *Modem) expectOkDirect(ctx context.Context, cmd string) error {
	resp, err := m.execDirect(ctx, cmd)
	if err != nil {
		return err
	}
	if !strings.Contains(resp, at.OK) {
		return fmt.Errorf("unexpected response: %q", resp)
	}
	return nil
}
