package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Settings is the run configuration assembled from the environment. Command
// line flags start from these values.
type Settings struct {
	PaletteImage string
	Profile      string
	ProfilesFile string

	Order     int     `validate:"gte=0,lte=8"`
	Mode      string  `validate:"oneof=pair bayer floyd-steinberg"`
	Strength  float64 `validate:"gt=0,lte=4"`
	Workers   int     `validate:"gte=0"`
	CacheSize int     `validate:"gte=0"`

	Width  int    `validate:"gte=0"`
	Height int    `validate:"gte=0"`
	Resize string `validate:"oneof=none fit fill"`

	DownloadTimeout time.Duration `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn warning error"`
	LogFormat string `validate:"oneof=text json"`
}

// Load reads Settings from the environment, filling defaults
func Load() Settings {
	return Settings{
		PaletteImage: Get("PALETTE_IMAGE", ""),
		Profile:      Get("PALETTE_PROFILE", ""),
		ProfilesFile: Get("PROFILES_FILE", ""),

		Order:     GetInt("DITHER_ORDER", 5),
		Mode:      strings.ToLower(Get("DITHER_MODE", "pair")),
		Strength:  GetFloat("DITHER_STRENGTH", 1),
		Workers:   GetInt("DITHER_WORKERS", runtime.GOMAXPROCS(0)),
		CacheSize: GetInt("DITHER_CACHE_SIZE", 4096),

		Width:  GetInt("OUTPUT_WIDTH", 0),
		Height: GetInt("OUTPUT_HEIGHT", 0),
		Resize: strings.ToLower(Get("RESIZE_MODE", "none")),

		DownloadTimeout: GetDuration("DOWNLOAD_TIMEOUT", 30*time.Second),

		LogLevel:  strings.ToLower(Get("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(Get("LOG_FORMAT", "text")),
	}
}

var validate = validator.New()

// Validate checks value ranges and enumerations
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.New(validationErrorMessage(err))
	}
	if s.PaletteImage != "" && s.Profile != "" {
		return errors.New("palette image and palette profile are mutually exclusive")
	}
	return nil
}

// validationErrorMessage returns a user-friendly validation error message
func validationErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			switch ve.Tag() {
			case "oneof":
				msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", ve.Field(), ve.Param(), ve.Value()))
			case "gte", "lte", "gt":
				msgs = append(msgs, fmt.Sprintf("%s=%v is out of range (%s %s)", ve.Field(), ve.Value(), ve.Tag(), ve.Param()))
			default:
				msgs = append(msgs, fmt.Sprintf("%s is invalid", ve.Field()))
			}
		}
		return strings.Join(msgs, "; ")
	}
	return "invalid settings"
}
