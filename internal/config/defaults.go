package config

const (
	defaultStateDir            = "~/.local/share/audesc"
	defaultLogDir              = "~/.local/share/audesc/logs"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultTTSBinary           = "espeak-ng"
	defaultAudioCodec          = "aac"
	defaultAudioBitrate        = "192k"
	defaultPreviewSeconds      = 10
	defaultMinFreeSpaceGiB     = 1
	defaultAutosaveIntervalSec = 30
	defaultAutosaveKeep        = 10
	defaultTTSRateWPM          = 160
	defaultTTSParallelism      = 4
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Tools: Tools{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			TTSBinary:     defaultTTSBinary,
		},
		Render: Render{
			AudioCodec:      defaultAudioCodec,
			AudioBitrate:    defaultAudioBitrate,
			PreviewSeconds:  defaultPreviewSeconds,
			MinFreeSpaceGiB: defaultMinFreeSpaceGiB,
		},
		Autosave: Autosave{
			IntervalSeconds: defaultAutosaveIntervalSec,
			KeepSnapshots:   defaultAutosaveKeep,
		},
		TTS: TTS{
			RateWPM:     defaultTTSRateWPM,
			Parallelism: defaultTTSParallelism,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
