package rpc

import (
	"fmt"

	"ptysidecar/internal/supervisor"
)

// Dispatcher routes decoded requests to registry operations. It holds no
// state of its own beyond the registry reference, so it is safe to call
// concurrently — though the server's accept loop only ever calls it
// serially, one request at a time.
type Dispatcher struct {
	reg *supervisor.Registry
}

// NewDispatcher wraps reg for RPC dispatch.
func NewDispatcher(reg *supervisor.Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Handle executes req and returns its result value, or an error destined
// for the response envelope's "error" field. shutdown is true only for a
// successful "dispose", signaling the caller to stop accepting.
func (d *Dispatcher) Handle(req Request) (result interface{}, shutdown bool, err error) {
	m, err := params(req)
	if err != nil {
		return nil, false, err
	}

	switch req.Method {
	case "hello":
		return map[string]interface{}{"version": 1}, false, nil

	case "get_or_create_session":
		projectName, err := getString(m, "projectName")
		if err != nil {
			return nil, false, err
		}
		firstWindowName := getOptString(m, "firstWindowName")
		name := d.reg.GetOrCreateSession(projectName, firstWindowName)
		return map[string]interface{}{"sessionName": name}, false, nil

	case "set_session_env":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		key, err := getString(m, "key")
		if err != nil {
			return nil, false, err
		}
		value, err := getString(m, "value")
		if err != nil {
			return nil, false, err
		}
		d.reg.SetSessionEnv(sessionName, key, value)
		return map[string]interface{}{"ok": true}, false, nil

	case "window_exists":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		return map[string]interface{}{"exists": d.reg.WindowExists(sessionName, windowName)}, false, nil

	case "start_window":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		command, err := getString(m, "command")
		if err != nil {
			return nil, false, err
		}
		if err := d.reg.StartWindow(sessionName, windowName, command); err != nil {
			return nil, false, err
		}
		return map[string]interface{}{"ok": true}, false, nil

	case "type_keys":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		keys, err := getString(m, "keys")
		if err != nil {
			return nil, false, err
		}
		if err := d.reg.TypeKeys(sessionName, windowName, keys); err != nil {
			return nil, false, err
		}
		return map[string]interface{}{"ok": true}, false, nil

	case "send_enter":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		if err := d.reg.SendEnter(sessionName, windowName); err != nil {
			return nil, false, err
		}
		return map[string]interface{}{"ok": true}, false, nil

	case "resize_window":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		cols := getDimOr(m, "cols", d.reg.DefaultCols())
		rows := getDimOr(m, "rows", d.reg.DefaultRows())
		if err := d.reg.ResizeWindow(sessionName, windowName, cols, rows); err != nil {
			return nil, false, err
		}
		return map[string]interface{}{"ok": true}, false, nil

	case "list_windows":
		sessionFilter := getOptString(m, "sessionName")
		snaps := d.reg.ListWindows(sessionFilter)
		infos := make([]windowInfo, 0, len(snaps))
		for _, s := range snaps {
			infos = append(infos, toWindowInfo(s))
		}
		return map[string]interface{}{"windows": infos}, false, nil

	case "get_window_buffer":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		buf, err := d.reg.GetWindowBuffer(sessionName, windowName)
		if err != nil {
			return nil, false, err
		}
		return map[string]interface{}{"buffer": buf}, false, nil

	case "get_window_frame":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		cols := getDim(m, "cols")
		rows := getDim(m, "rows")
		frame, err := d.reg.GetWindowFrame(sessionName, windowName, cols, rows)
		if err != nil {
			return nil, false, err
		}
		return frame, false, nil

	case "stop_window":
		sessionName, err := getString(m, "sessionName")
		if err != nil {
			return nil, false, err
		}
		windowName, err := getString(m, "windowName")
		if err != nil {
			return nil, false, err
		}
		stopped, err := d.reg.StopWindow(sessionName, windowName)
		if err != nil {
			return nil, false, err
		}
		return map[string]interface{}{"stopped": stopped}, false, nil

	case "dispose":
		d.reg.Dispose()
		return map[string]interface{}{"ok": true}, true, nil

	default:
		return nil, false, fmt.Errorf("unknown method: %s", req.Method)
	}
}

// windowInfo is the wire shape for a single entry in list_windows' result,
// with option-like fields always present (possibly null) to match the
// original prototype's JSON shape.
type windowInfo struct {
	SessionName string  `json:"sessionName"`
	WindowName  string  `json:"windowName"`
	Status      string  `json:"status"`
	PID         *int    `json:"pid"`
	StartedAt   *int64  `json:"startedAt"`
	ExitedAt    *int64  `json:"exitedAt"`
	ExitCode    *int    `json:"exitCode"`
	Signal      *string `json:"signal"`
}

func toWindowInfo(s supervisor.Snapshot) windowInfo {
	info := windowInfo{
		SessionName: s.SessionName,
		WindowName:  s.WindowName,
		Status:      s.Status,
		StartedAt:   s.StartedAt,
		ExitedAt:    s.ExitedAt,
		ExitCode:    s.ExitCode,
		Signal:      s.Signal,
	}
	if s.PID != 0 {
		pid := s.PID
		info.PID = &pid
	}
	return info
}
