package session

import (
	"context"
	"sync"
)

var _ cuePlayer = &cuePlayerMock{}

type cuePlayerMock struct {
	PlayErrorFunc   func(ctx context.Context) error
	PlaySuccessFunc func(ctx context.Context) error

	calls struct {
		PlayError []struct {
			Ctx context.Context
		}
		PlaySuccess []struct {
			Ctx context.Context
		}
	}
	lockPlayError   sync.RWMutex
	lockPlaySuccess sync.RWMutex
}

func (mock *cuePlayerMock) PlayError(ctx context.Context) error {
	if mock.PlayErrorFunc == nil {
		panic("cuePlayerMock.PlayErrorFunc: method is nil but cuePlayer.PlayError was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockPlayError.Lock()
	mock.calls.PlayError = append(mock.calls.PlayError, callInfo)
	mock.lockPlayError.Unlock()
	return mock.PlayErrorFunc(ctx)
}

func (mock *cuePlayerMock) PlayErrorCalls() []struct {
	Ctx context.Context
} {
	mock.lockPlayError.RLock()
	calls := mock.calls.PlayError
	mock.lockPlayError.RUnlock()
	return calls
}

func (mock *cuePlayerMock) PlaySuccess(ctx context.Context) error {
	if mock.PlaySuccessFunc == nil {
		panic("cuePlayerMock.PlaySuccessFunc: method is nil but cuePlayer.PlaySuccess was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockPlaySuccess.Lock()
	mock.calls.PlaySuccess = append(mock.calls.PlaySuccess, callInfo)
	mock.lockPlaySuccess.Unlock()
	return mock.PlaySuccessFunc(ctx)
}

func (mock *cuePlayerMock) PlaySuccessCalls() []struct {
	Ctx context.Context
} {
	mock.lockPlaySuccess.RLock()
	calls := mock.calls.PlaySuccess
	mock.lockPlaySuccess.RUnlock()
	return calls
}
