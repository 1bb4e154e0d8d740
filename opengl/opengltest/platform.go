package opengltest

import "node-render/opengl"

// Platform hands out a fake context and a Recorder.
type Platform struct {
	Recorder *Recorder
	Context  *Context

	CreateErr error
	LoadErr   error
}

func NewPlatform() *Platform {
	return &Platform{Recorder: NewRecorder(), Context: NewContext("engine")}
}

func (p *Platform) CreateContext() (opengl.Context, error) {
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	return p.Context, nil
}

func (p *Platform) LoadFunctions(opengl.Context) (opengl.Functions, error) {
	if p.LoadErr != nil {
		return nil, p.LoadErr
	}
	return p.Recorder, nil
}
