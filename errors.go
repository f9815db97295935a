package accel3d

import "errors"

var (
	// ErrUnsupported reports a primitive whose class is rejected under the
	// current render state.
	ErrUnsupported = errors.New("accel3d: primitive class not accelerated")

	// ErrAllPrimitivesFail reports a render state under which no primitive
	// class is accelerated.
	ErrAllPrimitivesFail = errors.New("accel3d: no primitive class accelerated")

	// ErrTextureUnavailable reports a textured primitive whose texture
	// could not be made resident.
	ErrTextureUnavailable = errors.New("accel3d: texture unavailable")

	// ErrUnknownTexture reports a texture id that was never added.
	ErrUnknownTexture = errors.New("accel3d: unknown texture")

	// ErrUnknownProfile reports a profile name that is not registered.
	ErrUnknownProfile = errors.New("accel3d: unknown profile")
)
