package tui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/pitwall/internal/engine"
	"github.com/haskel/pitwall/internal/server"
)

// Messages for tea.Cmd
type circuitsMsg struct {
	circuits []engine.CircuitSummary
	err      error
}

type detailMsg struct {
	detail *engine.CircuitDetail
	err    error
}

type predictMsg struct {
	seq  int
	resp *engine.PredictResponse
	err  error
}

type cautionMsg struct {
	seq  int
	resp *engine.CautionResponse
	err  error
}

type battleMsg struct {
	seq  int
	resp *engine.BattleResponse
	err  error
}

type tickMsg time.Time

// API client for TUI
type apiClient struct {
	baseURL  string
	client   *http.Client
	user     string
	password string
}

func newAPIClient(cfg Config) *apiClient {
	return &apiClient{
		baseURL: cfg.ServerURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		user:     cfg.User,
		password: cfg.Password,
	}
}

// call sends a GET when body is nil and a POST otherwise, and decodes the
// answer into out. Error answers carry the server message.
func (c *apiClient) call(path string, body, out any) error {
	method := http.MethodGet
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		method = http.MethodPost
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" && c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var e server.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return errors.New(e.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func circuitPath(circuit, action string) string {
	p := "/v1/circuits/" + url.PathEscape(circuit)
	if action != "" {
		p += "/" + action
	}
	return p
}

func fetchCircuits(cfg Config) tea.Cmd {
	return func() tea.Msg {
		var resp server.CircuitsResponse
		err := newAPIClient(cfg).call("/v1/circuits", nil, &resp)
		return circuitsMsg{circuits: resp.Circuits, err: err}
	}
}

func fetchDetail(cfg Config, circuit string) tea.Cmd {
	return func() tea.Msg {
		var d engine.CircuitDetail
		if err := newAPIClient(cfg).call(circuitPath(circuit, ""), nil, &d); err != nil {
			return detailMsg{err: err}
		}
		return detailMsg{detail: &d}
	}
}

// calculate runs the three calculators for the current inputs.
func calculate(cfg Config, circuit string, seq int, in Inputs) tea.Cmd {
	client := newAPIClient(cfg)

	predict := func() tea.Msg {
		var r engine.PredictResponse
		err := client.call(circuitPath(circuit, "predict"), engine.PredictRequest{
			TireAgeLaps:    in.TireAge,
			TrackTempC:     in.Temp,
			Aggressiveness: in.Aggression,
		}, &r)
		if err != nil {
			return predictMsg{seq: seq, err: err}
		}
		return predictMsg{seq: seq, resp: &r}
	}

	caution := func() tea.Msg {
		var r engine.CautionResponse
		err := client.call(circuitPath(circuit, "caution"), engine.CautionRequest{
			TireAgeLaps:    in.TireAge,
			LapsRemaining:  in.LapsRemaining,
			TrackTempC:     in.Temp,
			Aggressiveness: in.Aggression,
			TargetPitLap:   in.TargetLap,
		}, &r)
		if err != nil {
			return cautionMsg{seq: seq, err: err}
		}
		return cautionMsg{seq: seq, resp: &r}
	}

	battle := func() tea.Msg {
		var r engine.BattleResponse
		err := client.call(circuitPath(circuit, "battle"), engine.BattleRequest{
			Mode:             in.Mode,
			OwnTireAgeLaps:   in.TireAge,
			RivalTireAgeLaps: in.RivalTireAge,
			TrackTempC:       in.Temp,
			Aggressiveness:   in.Aggression,
			GapSeconds:       in.Gap,
		}, &r)
		if err != nil {
			return battleMsg{seq: seq, err: err}
		}
		return battleMsg{seq: seq, resp: &r}
	}

	return tea.Batch(predict, caution, battle)
}

// tick creates a periodic tick command
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
