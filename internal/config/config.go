package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	AppEnv            string        `env:"APP_ENV" envDefault:"production"`
	HTTPPort          string        `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	RunMigrations     bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	JWTSecret         string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer         string        `env:"JWT_ISSUER" envDefault:"anniversary-api"`
	JWTTTL            time.Duration `env:"JWT_TTL" envDefault:"168h"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"10"`
	PasswordMinLength int           `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment indica si el servicio corre en modo desarrollo.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
