// Package transcription defines the provider contract for remote
// speech-to-text backends and the service that drives one transcription
// job from submission to its formatted result.
//
// Backends register through the generic provider registry and are selected
// by configured name at call time:
//
//	reg := transcription.NewRegistry()
//	reg.Set(swiftink.ProviderName, swiftinkProvider)
//	svc := transcription.NewService(reg, cfg.Provider)
//	doc, err := svc.Transcribe(ctx, transcription.Request{FileName: name, Data: data})
package transcription
