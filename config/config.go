package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"solgraph/log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type config struct {
	// MySQL configs.
	User     string
	Password string
	Hostname string
	Port     string
	Database string

	// Label sets log output prefix.
	Label string

	// Listen is the address the HTTP API binds to.
	Listen string

	RPCs []string `mapstructure:"rpc_url"`

	// Workers caps the number of concurrent remote lookups
	// within one enrichment batch. Recommend value: 8.
	Workers int

	Solscan SolscanConfig

	// AliyunMail is an optional config which will be used in mail alert package.
	AliyunMail AliyunMailConfig `mapstructure:"aliyun_mail"`
}

// SolscanConfig holds solscan pro API access configs.
type SolscanConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// AliyunMailConfig is the struct for aliyun mail configs.
type AliyunMailConfig struct {
	AccountName     string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Receiver        []string
}

var cfg config

// Load reads configs from file and watches for changes.
func Load(display bool) {
	viper.SetConfigName("config")
	viper.AddConfigPath("./config")
	// Incase test cases require loading configs.
	viper.AddConfigPath("../config")

	if err := load(display); err != nil {
		panic(err)
	}

	if err := check(); err != nil {
		panic(err)
	}

	update()

	log.UpdatePrefix(GetLabel())

	viper.WatchConfig()
	viper.OnConfigChange(onConfigChange)
}

func load(display bool) error {
	err := viper.ReadInConfig()
	if err != nil {
		return err
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return err
	}

	if display {
		configContent, _ := json.MarshalIndent(cfg, "", "    ")
		log.Println(string(configContent))
	}

	return nil
}

func update() {
	for i := 0; i < len(cfg.RPCs); i++ {
		rpc := cfg.RPCs[i]
		if !strings.HasPrefix(rpc, "http") {
			cfg.RPCs[i] = "https://" + rpc
		}
	}

	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
}

// GetDbConnStr returns mysql connection string.
func GetDbConnStr() string {
	str := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s",
		cfg.User,
		cfg.Password,
		cfg.Hostname,
		cfg.Port,
		cfg.Database,
	)

	params := []string{
		"charset=utf8mb4",
		"parseTime=True",
		"loc=Local",
	}

	if len(params) > 0 {
		str = fmt.Sprintf("%s?%s", str, strings.Join(params, "&"))
	}

	return str
}

// GetLabel returns custome label as console output prefix.
func GetLabel() string {
	return cfg.Label
}

// GetListen returns the HTTP listen address.
func GetListen() string {
	return cfg.Listen
}

// GetRPCs returns all rpc urls from config.
func GetRPCs() []string {
	return cfg.RPCs
}

// GetWorkers returns the remote lookup concurrency cap.
func GetWorkers() int {
	return cfg.Workers
}

// GetSolscan returns solscan API configs.
func GetSolscan() SolscanConfig {
	return cfg.Solscan
}

// LoadAliyunMailConfig performs a basic check on aliyun mail config.
func LoadAliyunMailConfig() error {
	if err := checkAliyunMail(); err != nil {
		return err
	}

	return nil
}

// GetAliyunMailConfig returns aliyun mail configs.
func GetAliyunMailConfig() AliyunMailConfig {
	return cfg.AliyunMail
}

func check() error {
	if err := checkWorker(); err != nil {
		return err
	}

	if err := checkRPCs(); err != nil {
		return err
	}

	if err := checkSolscan(); err != nil {
		return err
	}

	return nil
}

func checkWorker() error {
	if cfg.Workers < 1 {
		return errors.New("value of 'workers' must greater than or equal to 1")
	}
	return nil
}

func checkRPCs() error {
	if len(cfg.RPCs) < 1 {
		return errors.New("at least 1 rpc server url must be set")
	}

	for _, rpc := range cfg.RPCs {
		raw := rpc
		if !strings.HasPrefix(raw, "http") {
			raw = "https://" + raw
		}

		u, err := url.Parse(raw)
		if err != nil {
			return err
		}

		if u.Host == "" {
			return fmt.Errorf("rpc url '%s' has no host part", rpc)
		}
	}

	return nil
}

func checkSolscan() error {
	if cfg.Solscan.BaseURL == "" {
		return errors.New("solscan base url cannot be empty")
	}

	if cfg.Solscan.APIKey == "" {
		return errors.New("solscan api key cannot be empty")
	}

	return nil
}

func checkAliyunMail() error {
	m := cfg.AliyunMail

	if m.AccountName == "" {
		return errors.New("aliyun mail account name cannot be empty")
	}

	if m.Region == "" {
		return errors.New("aliyun mail region cannot be empty")
	}

	if m.AccessKeyID == "" {
		return errors.New("aliyun mail accessKeyID cannot be empty")
	}

	if m.AccessKeySecret == "" {
		return errors.New("aliyun mail accessKeySecret cannot be empty")
	}

	if len(m.Receiver) == 0 {
		return errors.New("aliyun mail receiver cannot be empty")
	}

	return nil
}

func onConfigChange(e fsnotify.Event) {
	log.Printf("Config file change detected: %s", e.Name)

	const stdErr = "Failed to read new configuration, current configuration stay unchanged"

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("%s: %s", stdErr, err)
		return
	}

	if err := load(true); err != nil {
		log.Printf("%s: %s", stdErr, err)
		return
	}

	if err := check(); err != nil {
		log.Printf("%s: %s", stdErr, err)
		return
	}

	log.UpdatePrefix(GetLabel())
}
