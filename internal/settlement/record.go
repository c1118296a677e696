package settlement

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/animica-labs/poies/internal/scoring"
)

// ProviderPayout is one provider's settlement line.
type ProviderPayout struct {
	Provider      string `json:"provider"`
	UncappedMicro int64  `json:"uncappedMicro"`
	CappedMicro   int64  `json:"cappedMicro"`
	Payout        string `json:"payout"` // decimal token amount
}

// EpochRecord is the persisted settlement snapshot for one epoch: shares,
// payouts, treasury slice, and the fairness diagnostics over the capped
// allocation.
type EpochRecord struct {
	Epoch       uint64                 `json:"epoch"`
	Pool        string                 `json:"pool"`
	TreasuryBps uint64                 `json:"treasuryBps"`
	Treasury    string                 `json:"treasury"`
	Providers   []ProviderPayout       `json:"providers"`
	Fairness    scoring.FairnessReport `json:"fairness"`
	AnchorTx    string                 `json:"anchorTx,omitempty"`
	SettledAt   int64                  `json:"settledAt"`
}

func recordFileName(epoch uint64) string {
	return fmt.Sprintf("settlement_epoch_%06d.json", epoch)
}

// CacheKey is the Redis key an epoch record is cached under.
func CacheKey(epoch uint64) string {
	return fmt.Sprintf("poies:settlement:%d", epoch)
}

// Write persists the record as JSON in dir, atomically via a temp file.
func (r *EpochRecord) Write(dir string) error {
	data, err := sonic.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal epoch record: %w", err)
	}

	path := filepath.Join(dir, recordFileName(r.Epoch))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write epoch record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename epoch record: %w", err)
	}
	return nil
}

// ReadRecord loads a previously written epoch record.
func ReadRecord(dir string, epoch uint64) (*EpochRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, recordFileName(epoch)))
	if err != nil {
		return nil, fmt.Errorf("read epoch record: %w", err)
	}

	record := &EpochRecord{}
	if err := sonic.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("unmarshal epoch record: %w", err)
	}
	return record, nil
}
