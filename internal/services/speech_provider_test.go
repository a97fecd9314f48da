package services

import (
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
)

func TestInferSpeechEncodingByExtension(t *testing.T) {
	cases := []struct {
		uri  string
		want speechpb.RecognitionConfig_AudioEncoding
	}{
		{"gs://stories/audio/a.wav", speechpb.RecognitionConfig_LINEAR16},
		{"gs://stories/audio/a.flac", speechpb.RecognitionConfig_FLAC},
		{"gs://stories/audio/a.mp3", speechpb.RecognitionConfig_MP3},
		{"gs://stories/audio/a.MP3", speechpb.RecognitionConfig_MP3},
		{"gs://stories/audio/a.ogg", speechpb.RecognitionConfig_OGG_OPUS},
		{"gs://stories/audio/a.opus", speechpb.RecognitionConfig_OGG_OPUS},
		{"gs://stories/audio/a.m4a", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
		{"gs://stories/audio/noext", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
	}
	for _, tc := range cases {
		if got := inferSpeechEncoding(tc.uri); got != tc.want {
			t.Fatalf("inferSpeechEncoding(%q): want=%v got=%v", tc.uri, tc.want, got)
		}
	}
}

func TestBuildSpeechRecognitionConfigDefaults(t *testing.T) {
	cfg := buildSpeechRecognitionConfig("gs://stories/audio/a.mp3", SpeechConfig{
		EnableAutomaticPunctuation: true,
		SampleRateHertz:            -8,
	})

	if cfg.LanguageCode != "en-US" {
		t.Fatalf("language: want=en-US got=%s", cfg.LanguageCode)
	}
	if cfg.Encoding != speechpb.RecognitionConfig_MP3 {
		t.Fatalf("encoding: want=MP3 got=%v", cfg.Encoding)
	}
	if !cfg.EnableAutomaticPunctuation {
		t.Fatalf("punctuation: want enabled")
	}
	if cfg.SampleRateHertz != 0 {
		t.Fatalf("negative sample rate should clamp to 0, got=%d", cfg.SampleRateHertz)
	}
}

func TestParseSpeechResponseJoinsAlternatives(t *testing.T) {
	resp := &speechpb.LongRunningRecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "I went "}}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "  "}}},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "to the park"}}},
		},
	}

	out := parseSpeechResponse("gcp_speech", "gs://stories/audio/a.wav", resp)
	if out.PrimaryText != "I went to the park" {
		t.Fatalf("primary text: want=%q got=%q", "I went to the park", out.PrimaryText)
	}
	if out.Provider != "gcp_speech" {
		t.Fatalf("provider: want=gcp_speech got=%s", out.Provider)
	}

	empty := parseSpeechResponse("gcp_speech", "gs://stories/audio/a.wav", nil)
	if empty.PrimaryText != "" {
		t.Fatalf("nil response: want empty text got=%q", empty.PrimaryText)
	}
}
