package palette

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rmitchellscott/palettedither/internal/colorspace"
)

//go:embed profiles/*.yml
var profileFiles embed.FS

// ErrUnknownProfile is returned when a named profile does not exist
var ErrUnknownProfile = errors.New("unknown palette profile")

// Profile is a named palette, optionally with the canvas size of the display
// it targets
type Profile struct {
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description"`
	Width       int      `yaml:"width" validate:"gte=0"`
	Height      int      `yaml:"height" validate:"gte=0"`
	Colors      []string `yaml:"colors" validate:"required,min=2,max=256,dive,hexcolor"`
}

// Palette builds the palette described by the profile
func (p Profile) Palette() (*Palette, error) {
	return FromHex(p.Colors...)
}

// profileFile is the layout of a user profiles file
type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// ProfileManager holds the built-in profiles plus any loaded from user files.
// Later loads override earlier profiles with the same name.
type ProfileManager struct {
	profiles map[string]Profile
	validate *validator.Validate
	mutex    sync.RWMutex
}

// NewProfileManager creates a manager and loads all embedded profiles
func NewProfileManager() (*ProfileManager, error) {
	pm := &ProfileManager{
		profiles: make(map[string]Profile),
		validate: validator.New(),
	}

	if err := pm.loadEmbeddedProfiles(); err != nil {
		return nil, fmt.Errorf("failed to load embedded profiles: %w", err)
	}

	return pm, nil
}

func (pm *ProfileManager) loadEmbeddedProfiles() error {
	entries, err := profileFiles.ReadDir("profiles")
	if err != nil {
		return fmt.Errorf("failed to read embedded profile directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yml") {
			continue
		}

		data, err := profileFiles.ReadFile("profiles/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read profile file %s: %w", entry.Name(), err)
		}

		var profile Profile
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("failed to parse YAML for profile %s: %w", entry.Name(), err)
		}
		if profile.Name == "" {
			profile.Name = strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		}

		if err := pm.add(profile); err != nil {
			return err
		}
	}

	return nil
}

// LoadFile reads a YAML file with a top-level "profiles" list
func (pm *ProfileManager) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profiles file: %w", err)
	}
	return pm.Load(data)
}

// Load parses profiles from YAML data. Nothing is added unless every profile
// in the document is valid.
func (pm *ProfileManager) Load(data []byte) error {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse profiles YAML: %w", err)
	}

	for _, profile := range file.Profiles {
		if err := pm.check(profile); err != nil {
			return err
		}
	}
	for _, profile := range file.Profiles {
		pm.store(profile)
	}
	return nil
}

func (pm *ProfileManager) add(profile Profile) error {
	if err := pm.check(profile); err != nil {
		return err
	}
	pm.store(profile)
	return nil
}

func (pm *ProfileManager) check(profile Profile) error {
	if err := pm.validate.Struct(profile); err != nil {
		return fmt.Errorf("invalid profile %q: %s", profile.Name, validationErrorMessage(err))
	}
	// hexcolor also admits alpha forms, which palettes cannot hold
	for _, c := range profile.Colors {
		if _, err := colorspace.ParseHex(c); err != nil {
			return fmt.Errorf("invalid profile %q: %s is not a #rrggbb color", profile.Name, c)
		}
	}
	return nil
}

func (pm *ProfileManager) store(profile Profile) {
	pm.mutex.Lock()
	pm.profiles[strings.ToLower(profile.Name)] = profile
	pm.mutex.Unlock()
}

// Get returns the profile with the given name, case-insensitively
func (pm *ProfileManager) Get(name string) (Profile, bool) {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	profile, ok := pm.profiles[strings.ToLower(strings.TrimSpace(name))]
	return profile, ok
}

// Palette resolves a profile name straight to its palette
func (pm *ProfileManager) Palette(name string) (*Palette, error) {
	profile, ok := pm.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return profile.Palette()
}

// Names returns all profile names, sorted
func (pm *ProfileManager) Names() []string {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	names := make([]string, 0, len(pm.profiles))
	for _, p := range pm.profiles {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

func validationErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs {
			switch ve.Field() {
			case "Name":
				return "name is required"
			case "Width", "Height":
				return strings.ToLower(ve.Field()) + " must not be negative"
			case "Colors":
				switch ve.Tag() {
				case "required", "min":
					return "at least two colors are required"
				case "max":
					return fmt.Sprintf("at most %d colors are allowed", MaxColors)
				}
			}
			if strings.HasPrefix(ve.Field(), "Colors[") && ve.Tag() == "hexcolor" {
				return fmt.Sprintf("%v is not a #rrggbb color", ve.Value())
			}
		}
	}
	return err.Error()
}
