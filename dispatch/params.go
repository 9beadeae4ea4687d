package dispatch

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/kbukum/modelgate/errors"
	"github.com/kbukum/modelgate/model"
)

// Keys understood in a Params map. Other keys are ignored.
const (
	ParamPrompt      = "prompt"
	ParamHistory     = "history"
	ParamTemperature = "temperature"
	ParamMaxTokens   = "max_tokens"
)

// Params is the loosely typed parameter map accepted by Execute. It carries
// the prompt, optional conversation history and per-call overrides.
type Params map[string]any

// Request is one dispatch, built per call and never stored.
type Request struct {
	Capability string
	Model      string
	Prompt     model.Prompt
	// Overrides replace the adapter's stored parameters for this call only.
	Overrides model.ParameterSet
}

// RequestFromParams converts a Params map into a Request. Values out of
// domain fail with INVALID_PARAMETER.
func RequestFromParams(capability, modelName string, params Params) (Request, error) {
	req := Request{Capability: capability, Model: modelName}

	if v, ok := params[ParamPrompt]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return req, errors.InvalidParameter(ParamPrompt, fmt.Sprintf("must be a string, got %T", v))
		}
		req.Prompt.Text = s
	}

	if v, ok := params[ParamHistory]; ok && v != nil {
		history, err := decodeHistory(v)
		if err != nil {
			return req, err
		}
		req.Prompt.History = history
	}

	if req.Prompt.Text == "" && len(req.Prompt.History) == 0 {
		return req, errors.InvalidParameter(ParamPrompt, "is required")
	}

	if v, ok := params[ParamTemperature]; ok && v != nil {
		t, err := toFloat(ParamTemperature, v)
		if err != nil {
			return req, err
		}
		if req.Overrides, err = req.Overrides.WithTemperature(t); err != nil {
			return req, err
		}
	}

	if v, ok := params[ParamMaxTokens]; ok && v != nil {
		n, err := toInt(ParamMaxTokens, v)
		if err != nil {
			return req, err
		}
		if req.Overrides, err = req.Overrides.WithMaxTokens(n); err != nil {
			return req, err
		}
	}

	return req, nil
}

func decodeHistory(v any) ([]model.Message, error) {
	var out []model.Message
	switch h := v.(type) {
	case []model.Message:
		out = append(out, h...)
	case *model.Conversation:
		out = h.Messages()
	case []map[string]string:
		for _, m := range h {
			out = append(out, model.Message{Role: model.Role(m["role"]), Content: m["content"]})
		}
	case []map[string]any:
		for i, m := range h {
			msg, err := messageFromMap(i, m)
			if err != nil {
				return nil, err
			}
			out = append(out, msg)
		}
	case []any:
		for i, item := range h {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, errors.InvalidParameter(ParamHistory, fmt.Sprintf("entry %d must be an object, got %T", i, item))
			}
			msg, err := messageFromMap(i, m)
			if err != nil {
				return nil, err
			}
			out = append(out, msg)
		}
	default:
		return nil, errors.InvalidParameter(ParamHistory, fmt.Sprintf("unsupported type %T", v))
	}

	for i, m := range out {
		if !m.Role.Valid() {
			return nil, errors.InvalidParameter(ParamHistory, fmt.Sprintf("entry %d has unknown role %q", i, m.Role))
		}
	}
	return out, nil
}

func messageFromMap(i int, m map[string]any) (model.Message, error) {
	role, _ := m["role"].(string)
	content, ok := m["content"].(string)
	if !ok {
		return model.Message{}, errors.InvalidParameter(ParamHistory, fmt.Sprintf("entry %d has no string content", i))
	}
	return model.Message{Role: model.Role(role), Content: content}, nil
}

func toFloat(name string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errors.InvalidParameter(name, "must be a number")
		}
		return f, nil
	default:
		return 0, errors.InvalidParameter(name, fmt.Sprintf("must be a number, got %T", v))
	}
}

func toInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, errors.InvalidParameter(name, "must be an integer")
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.InvalidParameter(name, "must be an integer")
		}
		return int(i), nil
	default:
		return 0, errors.InvalidParameter(name, fmt.Sprintf("must be an integer, got %T", v))
	}
}
