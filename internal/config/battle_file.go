package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// battleFileOverrides mirrors the optional JSON tuning file. Pointer fields
// distinguish "absent" from an explicit zero.
type battleFileOverrides struct {
	CooldownSeconds *int     `json:"cooldown_seconds"`
	LevelCoeff      *float64 `json:"level_coeff"`
	WinExp          *int     `json:"win_exp"`
	WinMoney        *int     `json:"win_money"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ApplyBattleFile overlays tuning values from the JSON file at path onto the
// env-derived battle config. A missing file is not an error; the file is
// commonly edited on Windows, so a UTF-8 BOM prefix is tolerated.
func (c *Config) ApplyBattleFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read battle config: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var ov battleFileOverrides
	if err := json.Unmarshal(raw, &ov); err != nil {
		return fmt.Errorf("parse battle config %s: %w", path, err)
	}

	if ov.CooldownSeconds != nil {
		c.Battle.CooldownSeconds = *ov.CooldownSeconds
	}
	if ov.LevelCoeff != nil {
		c.Battle.LevelCoeff = *ov.LevelCoeff
	}
	if ov.WinExp != nil {
		c.Battle.WinExp = *ov.WinExp
	}
	if ov.WinMoney != nil {
		c.Battle.WinMoney = *ov.WinMoney
	}
	return nil
}
