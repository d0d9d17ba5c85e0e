package logging

// Component constants for structured logging
const (
	ComponentStartup         = "startup"
	ComponentDither          = "dither"
	ComponentPalette         = "palette"
	ComponentImageProcessing = "imageprocessing"
	ComponentStorage         = "storage"
)
