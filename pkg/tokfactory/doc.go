// Package tokfactory is the public entry point of the token factory.
//
// A Factory is a registry of batch-scoped fungible tokens. Each token is
// created for exactly one batch id, carries a balance ledger and an expiry,
// and accepts transfers only for its own batch id until it expires.
//
//	f, err := tokfactory.Open(ctx, tokfactory.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	addr, err := f.CreateToken(ctx, &tokfactory.CreateTokenRequest{
//		Name:              "Harvest 2026",
//		Symbol:            "HV26",
//		InitialSupply:     1_000,
//		CreatorAllocation: 1_000,
//		ExpiresAt:         time.Now().Add(24 * time.Hour).Unix(),
//		BatchID:           1,
//		Creator:           caller,
//	})
//
// The caller identity passed as Creator and TransferRequest.From must be
// authenticated by the embedding application.
package tokfactory
