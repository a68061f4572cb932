package rpc

import (
	"bytes"
	"fmt"

	"github.com/marmos91/nfscall/internal/protocol/xdr"
	goxdr "github.com/rasky/go-xdr/xdr2"
)

// OpaqueAuth is the opaque_auth structure carried in call credentials and
// verifiers: a flavor discriminant and an opaque body of at most 400 bytes.
type OpaqueAuth struct {
	Flavor uint32
	Body   []byte
}

// NullAuth returns an AUTH_NULL credential with an empty body.
func NullAuth() OpaqueAuth {
	return OpaqueAuth{Flavor: AuthNull}
}

// EncodedLen returns the XDR size of the credential.
func (a OpaqueAuth) EncodedLen() int {
	return xdr.Uint32Len + xdr.BytesLen(a.Body)
}

// Encode writes the flavor followed by the body as opaque data.
func (a OpaqueAuth) Encode(w *xdr.Writer) error {
	if err := w.WriteUint32(a.Flavor); err != nil {
		return fmt.Errorf("write auth flavor: %w", err)
	}
	if err := w.WriteOpaque(a.Body); err != nil {
		return fmt.Errorf("write auth body: %w", err)
	}
	return nil
}

func decodeOpaqueAuth(r *xdr.Reader) (OpaqueAuth, error) {
	flavor, err := r.ReadUint32()
	if err != nil {
		return OpaqueAuth{}, fmt.Errorf("read auth flavor: %w", err)
	}
	body, err := r.ReadOpaque()
	if err != nil {
		return OpaqueAuth{}, fmt.Errorf("read auth body: %w", err)
	}
	if len(body) > maxAuthBody {
		return OpaqueAuth{}, fmt.Errorf("auth body too long: %d bytes (max %d)", len(body), maxAuthBody)
	}
	return OpaqueAuth{Flavor: flavor, Body: body}, nil
}

// ============================================================================
// AUTH_UNIX
// ============================================================================

const (
	maxMachineName = 255
	maxUnixGIDs    = 16
)

// UnixAuth is the body of an AUTH_UNIX (AUTH_SYS) credential, RFC 5531
// Appendix A.
type UnixAuth struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	GIDs        []uint32
}

// ParseUnixAuth decodes an AUTH_UNIX credential body.
//
// Bounds are checked on the raw bytes first, so an oversized machine name or
// gid list is rejected before anything is allocated for it.
func ParseUnixAuth(body []byte) (*UnixAuth, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty auth body")
	}
	if err := checkUnixAuthBounds(body); err != nil {
		return nil, err
	}

	auth := &UnixAuth{}
	if _, err := goxdr.Unmarshal(bytes.NewReader(body), auth); err != nil {
		return nil, fmt.Errorf("decode auth_unix: %w", err)
	}
	if auth.GIDs == nil {
		auth.GIDs = []uint32{}
	}
	return auth, nil
}

func checkUnixAuthBounds(body []byte) error {
	r := xdr.NewReader(body)
	if _, err := r.ReadUint32(); err != nil {
		return fmt.Errorf("read stamp: %w", err)
	}
	nameLen, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("read machine name length: %w", err)
	}
	if nameLen > maxMachineName {
		return fmt.Errorf("machine name too long: %d bytes (max %d)", nameLen, maxMachineName)
	}
	if _, err := r.ReadFixedOpaque(int(nameLen)); err != nil {
		return fmt.Errorf("read machine name: %w", err)
	}
	if _, err := r.ReadUint64(); err != nil { // uid + gid
		return fmt.Errorf("read uid/gid: %w", err)
	}
	count, err := r.ReadUint32()
	if err != nil {
		return fmt.Errorf("read gid count: %w", err)
	}
	if count > maxUnixGIDs {
		return fmt.Errorf("too many gids: %d (max %d)", count, maxUnixGIDs)
	}
	return nil
}

// Encode serializes the credential body in AUTH_UNIX wire format.
func (a *UnixAuth) Encode() ([]byte, error) {
	if len(a.MachineName) > maxMachineName {
		return nil, fmt.Errorf("machine name too long: %d bytes (max %d)", len(a.MachineName), maxMachineName)
	}
	if len(a.GIDs) > maxUnixGIDs {
		return nil, fmt.Errorf("too many gids: %d (max %d)", len(a.GIDs), maxUnixGIDs)
	}

	gids := a.GIDs
	if gids == nil {
		gids = []uint32{}
	}
	body := struct {
		Stamp       uint32
		MachineName string
		UID         uint32
		GID         uint32
		GIDs        []uint32
	}{a.Stamp, a.MachineName, a.UID, a.GID, gids}

	var buf bytes.Buffer
	if _, err := goxdr.Marshal(&buf, &body); err != nil {
		return nil, fmt.Errorf("encode auth_unix: %w", err)
	}
	return buf.Bytes(), nil
}

// OpaqueAuth wraps the encoded body in an AUTH_UNIX credential.
func (a *UnixAuth) OpaqueAuth() (OpaqueAuth, error) {
	body, err := a.Encode()
	if err != nil {
		return OpaqueAuth{}, err
	}
	return OpaqueAuth{Flavor: AuthUnix, Body: body}, nil
}

// String returns a human-readable representation of the credentials.
func (a *UnixAuth) String() string {
	return fmt.Sprintf("AUTH_UNIX{machine=%s uid=%d gid=%d gids=%v}", a.MachineName, a.UID, a.GID, a.GIDs)
}

// AuthFlavorName returns a human-readable name for an auth flavor.
func AuthFlavorName(flavor uint32) string {
	switch flavor {
	case AuthNull:
		return "AUTH_NULL"
	case AuthUnix:
		return "AUTH_UNIX"
	case AuthShort:
		return "AUTH_SHORT"
	case AuthDES:
		return "AUTH_DES"
	default:
		return fmt.Sprintf("AUTH_%d", flavor)
	}
}
