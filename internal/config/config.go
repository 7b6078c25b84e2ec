package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
	} `yaml:"server"`
	Cost struct {
		SlippageModel      string  `yaml:"slippage_model"` // analytical | regression
		ImpactModel        string  `yaml:"impact_model"`   // quadratic | almgren
		ImpactK            float64 `yaml:"impact_k"`
		ImpactEta          float64 `yaml:"impact_eta"`
		ImpactGamma        float64 `yaml:"impact_gamma"`
		DefaultFeeTier     float64 `yaml:"default_fee_tier"`
		DefaultVolatility  float64 `yaml:"default_volatility"`
		DefaultTimeHorizon float64 `yaml:"default_time_horizon"`
		ModelPath          string  `yaml:"model_path"`
	} `yaml:"cost"`
	Generator struct {
		TargetURL   string  `yaml:"target_url"`
		Trades      int     `yaml:"trades"`
		Workers     int     `yaml:"workers"`
		RatePerSec  float64 `yaml:"rate_per_sec"`
		OutFile     string  `yaml:"out_file"`
		BookLevels  int     `yaml:"book_levels"`
		MidPrice    float64 `yaml:"mid_price"`
		PriceSpread float64 `yaml:"price_spread"`
	} `yaml:"generator"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":8080"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}
	c.Cost.SlippageModel = "analytical"
	c.Cost.ImpactModel = "quadratic"
	c.Cost.ImpactK = 0.0001
	c.Cost.ImpactEta = 0.01
	c.Cost.ImpactGamma = 0.005
	c.Cost.DefaultFeeTier = 0.001
	c.Cost.DefaultVolatility = 0.02
	c.Cost.DefaultTimeHorizon = 60
	c.Cost.ModelPath = "slippage_model.json"
	c.Generator.TargetURL = "http://localhost:8080/api/v1/cost"
	c.Generator.Trades = 500
	c.Generator.Workers = 4
	c.Generator.RatePerSec = 50
	c.Generator.OutFile = "trade_log.csv"
	c.Generator.BookLevels = 10
	c.Generator.MidPrice = 100.0
	c.Generator.PriceSpread = 2.0
	return c
}

func Load() Config {
	c := defaultConfig()
	if path := os.Getenv("GOQUANT_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	if v := os.Getenv("GOQUANT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOQUANT_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("GOQUANT_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GOQUANT_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("GOQUANT_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	if v := os.Getenv("GOQUANT_SLIPPAGE_MODEL"); v != "" {
		c.Cost.SlippageModel = v
	}
	if v := os.Getenv("GOQUANT_IMPACT_MODEL"); v != "" {
		c.Cost.ImpactModel = v
	}
	if v := os.Getenv("GOQUANT_MODEL_PATH"); v != "" {
		c.Cost.ModelPath = v
	}
	if v := os.Getenv("GOQUANT_IMPACT_K"); v != "" {
		var f float64
		_, _ = fmt.Sscan(v, &f)
		if f > 0 {
			c.Cost.ImpactK = f
		}
	}
	if v := os.Getenv("GOQUANT_IMPACT_ETA"); v != "" {
		var f float64
		_, _ = fmt.Sscan(v, &f)
		if f > 0 {
			c.Cost.ImpactEta = f
		}
	}
	if v := os.Getenv("GOQUANT_IMPACT_GAMMA"); v != "" {
		var f float64
		_, _ = fmt.Sscan(v, &f)
		if f > 0 {
			c.Cost.ImpactGamma = f
		}
	}
	if v := os.Getenv("GOQUANT_GEN_TARGET_URL"); v != "" {
		c.Generator.TargetURL = v
	}
	if v := os.Getenv("GOQUANT_GEN_TRADES"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Generator.Trades = n
		}
	}
	if v := os.Getenv("GOQUANT_GEN_WORKERS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Generator.Workers = n
		}
	}
	if v := os.Getenv("GOQUANT_GEN_OUT"); v != "" {
		c.Generator.OutFile = v
	}
	return c
}

func splitCSV(s string) []string {
	var out []string
	buf := []rune{}
	for _, r := range s {
		if r == ',' {
			if len(buf) > 0 {
				out = append(out, string(buf))
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, r)
	}
	if len(buf) > 0 {
		out = append(out, string(buf))
	}
	return out
}
