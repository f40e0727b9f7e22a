package ipc

import (
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"syscall"
	"time"
)

const dialTimeout = 2 * time.Second

// ErrDaemonNotRunning indicates the daemon socket is absent or refusing
// connections.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path. A missing or
// dead socket comes back wrapped in ErrDaemonNotRunning so callers can
// suggest starting the daemon.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		if isDaemonUnavailable(err) {
			return nil, fmt.Errorf("%w (socket %s): %w", ErrDaemonNotRunning, path, err)
		}
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

func isDaemonUnavailable(err error) bool {
	return os.IsNotExist(err) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// knownErrorKinds are the taxonomy prefixes the server attaches to rpc
// errors. Keep in sync with services.Kind.
var knownErrorKinds = map[string]struct{}{
	"device":        {},
	"launch":        {},
	"validation":    {},
	"configuration": {},
	"not_found":     {},
	"timeout":       {},
	"canceled":      {},
	"tool":          {},
	"internal":      {},
}

// SplitErrorKind separates the taxonomy prefix the server attaches from
// the human-readable message. Errors without a known prefix come back with
// an empty kind.
func SplitErrorKind(err error) (kind, message string) {
	if err == nil {
		return "", ""
	}
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 {
		if _, ok := knownErrorKinds[msg[:i]]; ok {
			return msg[:i], msg[i+2:]
		}
	}
	return "", msg
}

// Ping checks daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Tutorec.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Tutorec.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordStart launches a recording session.
func (c *Client) RecordStart(req RecordStartRequest) (*RecordStartResponse, error) {
	var resp RecordStartResponse
	if err := c.client.Call("Tutorec.RecordStart", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordPause suspends the active session.
func (c *Client) RecordPause() (*RecordPauseResponse, error) {
	var resp RecordPauseResponse
	if err := c.client.Call("Tutorec.RecordPause", RecordPauseRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordResume continues the active session.
func (c *Client) RecordResume() (*RecordResumeResponse, error) {
	var resp RecordResumeResponse
	if err := c.client.Call("Tutorec.RecordResume", RecordResumeRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecordStop ends the active session and finalizes its files.
func (c *Client) RecordStop() (*RecordStopResponse, error) {
	var resp RecordStopResponse
	if err := c.client.Call("Tutorec.RecordStop", RecordStopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExportStart begins an asynchronous merge of a project folder.
func (c *Client) ExportStart(folder, layout string) (*ExportStartResponse, error) {
	var resp ExportStartResponse
	req := ExportStartRequest{Folder: folder, Layout: layout}
	if err := c.client.Call("Tutorec.ExportStart", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExportStatus retrieves the most recent export task.
func (c *Client) ExportStatus() (*ExportStatusResponse, error) {
	var resp ExportStatusResponse
	if err := c.client.Call("Tutorec.ExportStatus", ExportStatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExportCancel kills the in-flight export.
func (c *Client) ExportCancel() (*ExportCancelResponse, error) {
	var resp ExportCancelResponse
	if err := c.client.Call("Tutorec.ExportCancel", ExportCancelRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Devices retrieves the capture device inventory.
func (c *Client) Devices() (*DevicesResponse, error) {
	var resp DevicesResponse
	if err := c.client.Call("Tutorec.Devices", DevicesRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LibraryList retrieves the recording catalog.
func (c *Client) LibraryList() (*LibraryListResponse, error) {
	var resp LibraryListResponse
	if err := c.client.Call("Tutorec.LibraryList", LibraryListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LibraryRemove deletes one catalog entry.
func (c *Client) LibraryRemove(id int64) (*LibraryRemoveResponse, error) {
	var resp LibraryRemoveResponse
	req := LibraryRemoveRequest{ID: id}
	if err := c.client.Call("Tutorec.LibraryRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon process to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call("Tutorec.Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
