package config

const (
	defaultLibraryDir       = "~/Music"
	defaultStateDir         = "~/.local/share/shelves"
	defaultLogDir           = "~/.local/share/shelves/logs"
	defaultShelf            = "Standard"
	defaultIncomingShelf    = "Incoming"
	defaultMaxNameLength    = 30
	defaultMaxWordCount     = 3
	defaultScanWorkers      = 4
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

var (
	defaultAlbumIndicators = []string{"vol", "volume", "disc", "cd", "part"}
	defaultAudioExtensions = []string{".mp3", ".flac", ".ogg", ".opus", ".m4a", ".wav", ".wv", ".ape", ".aiff"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			StateDir:   defaultStateDir,
			LogDir:     defaultLogDir,
		},
		Shelves: Shelves{
			Default: defaultShelf,
			Seed:    []string{defaultShelf, defaultIncomingShelf},
		},
		Workflow: Workflow{
			Enabled: false,
			Stage1:  defaultIncomingShelf,
			Stage2:  defaultShelf,
		},
		Classifier: Classifier{
			MaxNameLength:   defaultMaxNameLength,
			MaxWordCount:    defaultMaxWordCount,
			AlbumIndicators: append([]string(nil), defaultAlbumIndicators...),
		},
		Scan: Scan{
			Workers:    defaultScanWorkers,
			Extensions: append([]string(nil), defaultAudioExtensions...),
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
