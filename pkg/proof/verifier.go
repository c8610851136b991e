package proof

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"golang.org/x/sync/semaphore"

	"github.com/decred/slog"
)

// Verification errors, per spec §4.11.
var (
	ErrUnknownCircuit       = errors.New("proof: unknown circuit")
	ErrMalformedProof       = errors.New("proof: malformed proof or public signals")
	ErrPublicSignalMismatch = errors.New("proof: public signals do not match server commitments")
	ErrKeyNotLoaded         = errors.New("proof: verification key not loaded")
	ErrInvalid              = errors.New("proof: proof failed verification")
)

// curveID is the curve every circuit in this system is compiled for.
const curveID = ecc.BN254

// Verifier holds a process-global, read-only-after-preload cache of
// verification keys and bounds concurrent Groth16 verification to a small
// worker pool so one busy room cannot starve proof processing for another
// (spec §5: "default 2 workers").
type Verifier struct {
	log  slog.Logger
	keys [numCircuitTypes]groth16.VerifyingKey
	sem  *semaphore.Weighted
}

// NewVerifier constructs a Verifier with the given worker-pool size. A
// size <= 0 defaults to 2, matching spec §5's stated default.
func NewVerifier(log slog.Logger, workers int64) *Verifier {
	if workers <= 0 {
		workers = 2
	}
	return &Verifier{
		log: log,
		sem: semaphore.NewWeighted(workers),
	}
}

// LoadKeys preloads every circuit's verification key from dir, expecting
// one file per circuit named "<circuit>.vk" (e.g. "shuffle.vk"). Keys are
// immutable for the life of the process once loaded (spec §9).
func (v *Verifier) LoadKeys(dir string) error {
	for c := CircuitType(0); c < numCircuitTypes; c++ {
		path := filepath.Join(dir, c.String()+".vk")
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("proof: open verification key %s: %w", path, err)
		}
		vk := groth16.NewVerifyingKey(curveID)
		_, err = vk.ReadFrom(f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("proof: read verification key %s: %w", path, err)
		}
		if closeErr != nil {
			return fmt.Errorf("proof: close verification key %s: %w", path, closeErr)
		}
		v.keys[c] = vk
		v.log.Debugf("proof: loaded verification key for %s", c)
	}
	return nil
}

// Verify checks a proof against its declared public signals using the
// cached verification key for circuit, respecting the bounded worker pool.
// The caller is responsible for having already confirmed (outside this
// call) that publicSignals match the server's own canonical commitments;
// Verify itself never returns ErrPublicSignalMismatch.
func (v *Verifier) Verify(ctx context.Context, circuit CircuitType, proofBlob, publicSignalsBlob []byte) error {
	if circuit < 0 || circuit >= numCircuitTypes {
		return ErrUnknownCircuit
	}
	vk := v.keys[circuit]
	if vk == nil {
		return ErrKeyNotLoaded
	}

	if err := v.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("proof: acquire verification slot: %w", err)
	}
	defer v.sem.Release(1)

	proofObj := groth16.NewProof(curveID)
	if _, err := proofObj.ReadFrom(bytes.NewReader(proofBlob)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}

	publicWitness, err := witness.New(curveID.ScalarField())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}
	if _, err := publicWitness.ReadFrom(bytes.NewReader(publicSignalsBlob)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}

	if err := groth16.Verify(proofObj, vk, publicWitness); err != nil {
		v.log.Debugf("proof: verification rejected for %s: %v", circuit, err)
		return ErrInvalid
	}
	return nil
}

// ExpectedSignalsMismatch wraps the check the coordinator must run before
// calling Verify: the declared public signals in a submission (e.g.
// inputCardCommitment) must equal the server's own canonical commitment
// for that card index (spec §4.11). Comparison is by the caller, since
// decoding the public-signal layout is circuit-specific; this helper just
// names the error so callers surface it consistently.
func ExpectedSignalsMismatch() error {
	return ErrPublicSignalMismatch
}
