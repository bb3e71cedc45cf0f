package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/services"
)

// mindicador.cl publishes the daily UF value for Chile
const ufIndicatorURL = "https://mindicador.cl/api/uf"

// UFRefreshCron runs every weekday morning, after the daily UF publication
const UFRefreshCron = "30 9 * * 1-5"

type ufResponse struct {
	Serie []struct {
		Fecha string  `json:"fecha"`
		Valor float64 `json:"valor"`
	} `json:"serie"`
}

// FetchUFRate retrieves the current UF/CLP rate
func FetchUFRate(ctx context.Context, client *http.Client) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ufIndicatorURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("indicator API returned status %d", resp.StatusCode)
	}

	var body ufResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	if len(body.Serie) == 0 || body.Serie[0].Valor <= 0 {
		return 0, fmt.Errorf("indicator API returned no usable UF value")
	}

	return body.Serie[0].Valor, nil
}

// RegisterUFRateRefresh schedules the UF rate update. A failed fetch keeps
// the last stored value; the ROI computation never blocks on the external
// API.
func RegisterUFRateRefresh(sc *Scheduler, settingsSvc *services.SettingsService) error {
	client := &http.Client{Timeout: 15 * time.Second}

	return sc.Cron("uf-rate-refresh", UFRefreshCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		rate, err := FetchUFRate(ctx, client)
		if err != nil {
			log.Printf("⚠️ UF rate refresh failed, keeping previous value: %v", err)
			return
		}

		if err := settingsSvc.Set(ctx, models.SettingKeyUFRate, fmt.Sprintf("%.2f", rate)); err != nil {
			log.Printf("⚠️ Failed to store refreshed UF rate: %v", err)
			return
		}
		log.Printf("💱 UF rate refreshed: %.2f", rate)
	})
}
