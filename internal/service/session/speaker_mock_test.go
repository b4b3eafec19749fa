package session

import (
	"context"
	"sync"
)

var _ speaker = &speakerMock{}

type speakerMock struct {
	SpeakFunc func(ctx context.Context, text string) error

	calls struct {
		Speak []struct {
			Ctx  context.Context
			Text string
		}
	}
	lockSpeak sync.RWMutex
}

func (mock *speakerMock) Speak(ctx context.Context, text string) error {
	if mock.SpeakFunc == nil {
		panic("speakerMock.SpeakFunc: method is nil but speaker.Speak was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Text string
	}{Ctx: ctx, Text: text}
	mock.lockSpeak.Lock()
	mock.calls.Speak = append(mock.calls.Speak, callInfo)
	mock.lockSpeak.Unlock()
	return mock.SpeakFunc(ctx, text)
}

func (mock *speakerMock) SpeakCalls() []struct {
	Ctx  context.Context
	Text string
} {
	mock.lockSpeak.RLock()
	calls := mock.calls.Speak
	mock.lockSpeak.RUnlock()
	return calls
}
