package sim

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/mkarrio/deepsea-sim-go/internal/game"
)

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 1 * time.Second
)

// ScriptStrategy runs a user-provided script in a sandboxed goja runtime.
// The script defines decide(state, diverId) and returns either an action
// string or an object {action, take_tile}. Each strategy instance owns its
// runtime; runtimes are never shared between workers.
type ScriptStrategy struct {
	runtime *goja.Runtime
}

// NewScriptStrategy compiles the script source and verifies it defines
// decide().
func NewScriptStrategy(source string) (*ScriptStrategy, error) {
	s := &ScriptStrategy{runtime: goja.New()}

	// Block dangerous globals. Math is available by default.
	s.runtime.Set("require", goja.Undefined())
	s.runtime.Set("fetch", goja.Undefined())
	s.runtime.Set("XMLHttpRequest", goja.Undefined())
	s.runtime.Set("eval", goja.Undefined())
	s.runtime.Set("Function", goja.Undefined())

	err := s.runWithTimeout(scriptInitTimeout, func() error {
		if _, err := s.runtime.RunString(source); err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fn := s.runtime.Get("decide")
	if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
		return nil, fmt.Errorf("decide() function is not defined")
	}
	if _, ok := goja.AssertFunction(fn); !ok {
		return nil, fmt.Errorf("decide is not a function")
	}
	return s, nil
}

// Decide calls the script's decide(state, diverId) with the snapshot
// exposed under its JSON field names.
func (s *ScriptStrategy) Decide(state game.Snapshot, diverID string) (game.Decision, error) {
	stateVal, err := s.snapshotValue(state)
	if err != nil {
		return game.Decision{}, err
	}

	var result goja.Value
	err = s.runWithTimeout(scriptCallTimeout, func() error {
		callable, _ := goja.AssertFunction(s.runtime.Get("decide"))
		out, err := callable(goja.Undefined(), stateVal, s.runtime.ToValue(diverID))
		if err != nil {
			return fmt.Errorf("decide() error: %w", err)
		}
		result = out
		return nil
	})
	if err != nil {
		return game.Decision{}, err
	}

	return decisionFromValue(result)
}

// snapshotValue converts the snapshot through JSON so the script sees the
// wire field names (oxygen_remaining, current_diver_id, ...).
func (s *ScriptStrategy) snapshotValue(state game.Snapshot) (goja.Value, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s.runtime.ToValue(obj), nil
}

func decisionFromValue(v goja.Value) (game.Decision, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return game.Decision{}, fmt.Errorf("decide() returned nothing")
	}

	// A bare string is shorthand for an action without a pickup.
	if str, ok := v.Export().(string); ok {
		return game.Decision{Action: game.Action(str)}, nil
	}

	obj, ok := v.Export().(map[string]any)
	if !ok {
		return game.Decision{}, fmt.Errorf("decide() must return a string or an object")
	}

	action, _ := obj["action"].(string)
	if action == "" {
		return game.Decision{}, fmt.Errorf("decide() result is missing an action")
	}
	take, _ := obj["take_tile"].(bool)
	return game.Decision{Action: game.Action(action), TakeTile: take}, nil
}

func (s *ScriptStrategy) runWithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		// Interrupt a runaway script execution.
		s.runtime.Interrupt("script execution timeout")
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("script timed out: %w", err)
			}
			return fmt.Errorf("script timed out")
		case <-time.After(200 * time.Millisecond):
			return fmt.Errorf("script timed out")
		}
	}
}
