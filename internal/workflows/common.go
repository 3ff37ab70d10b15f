package workflows

import (
	"fmt"

	"github.com/PolarWolf314/kapu/internal/cipher"
	"github.com/PolarWolf314/kapu/internal/configs"
	kerrors "github.com/PolarWolf314/kapu/internal/errors"
	"github.com/PolarWolf314/kapu/internal/keys"
	logger "github.com/PolarWolf314/kapu/internal/logging"
	"github.com/PolarWolf314/kapu/internal/vault"
)

// KeySource names where key material comes from. Key wins over KeyFile.
type KeySource struct {
	// Key is the raw key string: n or "p:q" for Rabin, the shared key for
	// the substitution cipher.
	Key string

	// KeyFile is a key file written by KeyGen.
	KeyFile string
}

// resolvedKey is the backend together with the key string it expects.
type resolvedKey struct {
	Kind    cipher.Kind
	Backend cipher.Backend
	Key     string
}

// resolveKey picks the backend and key string for one direction. When kind
// is empty the key file's cipher, then the configured default, is used.
func resolveKey(kind cipher.Kind, src KeySource, forEncrypt bool) (*resolvedKey, error) {
	userConfig, err := configs.LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("loading user config: %w", err)
	}

	key := src.Key
	if key == "" && src.KeyFile != "" {
		file, err := keys.Load(src.KeyFile)
		if err != nil {
			return nil, err
		}
		fileKind, err := file.Kind()
		if err != nil {
			return nil, err
		}
		if kind == "" {
			kind = fileKind
		} else if kind != fileKind {
			return nil, fmt.Errorf("%w: key file is for %s, not %s", kerrors.ErrInvalidKey, fileKind, kind)
		}

		if forEncrypt {
			key, err = file.EncryptKey()
		} else {
			key, err = file.DecryptKey()
		}
		if err != nil {
			return nil, err
		}
	}

	if key == "" {
		return nil, fmt.Errorf("%w: no key or key file provided", kerrors.ErrInvalidKey)
	}
	if kind == "" {
		kind = userConfig.DefaultCipher()
	}

	backend, err := userConfig.Backend(kind)
	if err != nil {
		return nil, err
	}
	return &resolvedKey{Kind: kind, Backend: backend, Key: key}, nil
}

func newManager(log logger.Logger) *vault.Manager {
	manager := vault.NewManager(vault.NewFileStore())
	manager.Logger = log
	return manager
}
