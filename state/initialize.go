package state

import (
	"time"

	"lectern/anim"
)

// newLocalEnv creates a new LocalEnv instance with default artwork.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		Chrome: map[anim.Surface][]byte{
			anim.SurfaceEmptyLeft: []byte(`<svg viewBox="0 0 400 600" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="spine" x1="0" y1="0" x2="1" y2="0">
      <stop offset="0.85" stop-color="#fdf5e6"/>
      <stop offset="1" stop-color="#d8ccb4"/>
    </linearGradient>
  </defs>
  <rect width="400" height="600" fill="url(#spine)"/>
</svg>`),
			anim.SurfaceMiddleLeft: []byte(`<svg viewBox="0 0 400 600" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="spine" x1="0" y1="0" x2="1" y2="0">
      <stop offset="0.85" stop-color="#fdf5e6"/>
      <stop offset="1" stop-color="#d8ccb4"/>
    </linearGradient>
  </defs>
  <rect width="400" height="600" fill="url(#spine)"/>
  <path d="M150 300
           C170 280 230 280 250 300
           C230 320 170 320 150 300"
        fill="none" stroke="#8b7d6b" stroke-width="1.5"/>
</svg>`),
			anim.SurfaceOccupiedLeft: []byte(`<svg viewBox="0 0 400 600" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="spine" x1="0" y1="0" x2="1" y2="0">
      <stop offset="0.85" stop-color="#fdf5e6"/>
      <stop offset="1" stop-color="#d8ccb4"/>
    </linearGradient>
  </defs>
  <rect width="400" height="600" fill="url(#spine)"/>
  <path d="M60 120 H340 M60 160 H340 M60 200 H300 M60 260 H340 M60 300 H340 M60 340 H220"
        stroke="#cfc4ae" stroke-width="6"/>
</svg>`),
			anim.SurfaceBlankRight: []byte(`<svg viewBox="0 0 400 600" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="spine" x1="0" y1="0" x2="1" y2="0">
      <stop offset="0" stop-color="#d8ccb4"/>
      <stop offset="0.15" stop-color="#fdf5e6"/>
    </linearGradient>
  </defs>
  <rect width="400" height="600" fill="url(#spine)"/>
</svg>`),
		},
		Shadow: []byte(`<svg viewBox="0 0 400 600" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="shade" x1="0" y1="0" x2="1" y2="0">
      <stop offset="0" stop-color="#000000" stop-opacity="0.45"/>
      <stop offset="1" stop-color="#000000" stop-opacity="0"/>
    </linearGradient>
  </defs>
  <rect width="400" height="600" fill="url(#shade)"/>
</svg>`),
	}
}
