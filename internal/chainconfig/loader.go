package chainconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wonny/rollover/internal/rollover"
)

// Load reads a YAML chain file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, data, nil
}

// Parse decodes and validates a chain definition
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Manifest records what a weight table was built from
type Manifest struct {
	ChainID    string          `json:"chain_id"`
	ConfigHash string          `json:"config_hash"`
	Window     int             `json:"window"`
	Order      string          `json:"order_policy"`
	Overlap    string          `json:"overlap_policy"`
	Start      string          `json:"start_date"`
	End        string          `json:"end_date"`
	Days       int             `json:"days"`
	Rolls      []rollover.Roll `json:"rolls"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewManifest describes a build result for audit output
func NewManifest(cfg *Config, opts rollover.Options, res *rollover.Result) (*Manifest, error) {
	hash, err := Hash(cfg)
	if err != nil {
		return nil, err
	}

	w := res.Weights
	return &Manifest{
		ChainID:    cfg.Meta.ChainID,
		ConfigHash: hash,
		Window:     opts.Window,
		Order:      string(opts.Order),
		Overlap:    string(opts.Overlap),
		Start:      w.Date(0).Format(dateLayout),
		End:        w.Date(w.Len() - 1).Format(dateLayout),
		Days:       w.Len(),
		Rolls:      res.Rolls,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
