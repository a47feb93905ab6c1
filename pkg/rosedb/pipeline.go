package rosedb

import "context"

// pipeline runs the codec, cipher and backend legs. Every leg is a
// suspension point: a done context stops the pipeline before it starts.
type pipeline struct {
	backend Backend
	codec   Codec
	cipher  Cipher
}

// load returns ok=false when the backend has nothing persisted yet.
func (p *pipeline) load(ctx context.Context) (Data, bool, error) {
	var (
		raw []byte
		ok  bool
	)
	if err := step(ctx, StageLoad, func() (err error) {
		raw, ok, err = p.backend.Load(ctx)
		return err
	}); err != nil || !ok {
		return nil, false, err
	}

	var plain []byte
	if err := step(ctx, StageDecrypt, func() (err error) {
		plain, err = p.cipher.Decrypt(raw)
		return err
	}); err != nil {
		return nil, false, err
	}

	var data Data
	if err := step(ctx, StageDeserialize, func() (err error) {
		data, err = p.codec.Deserialize(plain)
		return err
	}); err != nil {
		return nil, false, err
	}
	if data == nil {
		data = Data{}
	}
	return data, true, nil
}

func (p *pipeline) save(ctx context.Context, data Data) error {
	var encoded []byte
	if err := step(ctx, StageSerialize, func() (err error) {
		encoded, err = p.codec.Serialize(data)
		return err
	}); err != nil {
		return err
	}

	var sealed []byte
	if err := step(ctx, StageEncrypt, func() (err error) {
		sealed, err = p.cipher.Encrypt(encoded)
		return err
	}); err != nil {
		return err
	}

	return step(ctx, StageSave, func() error {
		return p.backend.Save(ctx, sealed)
	})
}

func step(ctx context.Context, stage Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	return guard(stage, fn)
}
