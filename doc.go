// Package kafeido is a Go client for the Kafeido inference API.
//
// The API is OpenAI-compatible: chat completions, audio transcription
// and translation, text-to-speech, OCR, and vision endpoints share the
// request and response shapes of their OpenAI counterparts where one
// exists. Construct a client with New, then call methods on the
// resource services it exposes:
//
//	client, err := kafeido.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	completion, err := client.Chat.Completions.New(ctx, kafeido.ChatCompletionNewParams{
//		Model: "gpt-oss-20b",
//		Messages: []kafeido.ChatCompletionMessageParam{
//			{Role: kafeido.RoleUser, Content: "Hello!"},
//		},
//	})
//
// All request execution (auth, timeouts, retries, streaming decode,
// error classification) happens in the core package; resource methods
// only describe the endpoint they call.
package kafeido
