package config

import (
	"errors"
	"flag"
	"net"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr           string
	DBUrl          string
	TokenSecret    string
	TokenTTL       time.Duration
	SubmitCooldown time.Duration
	Debug          bool
}

func ParseFlags() (cfg Config, err error) {
	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", 5000, "listen port number (default 5000)")
	flag.StringVar(&cfg.DBUrl, "db-url", "mforms.sqlite", "path to SQLite3 DB file (default mforms.sqlite)")
	flag.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token signing and verification")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", 7*24*3600, "token TTL in seconds (default 7 days)")
	var cooldown uint
	flag.UintVar(&cooldown, "submit-cooldown", 30, "seconds a respondent must wait between submissions to the same form (default 30)")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.SubmitCooldown = time.Duration(cooldown) * time.Second

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
