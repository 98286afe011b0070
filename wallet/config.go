package wallet

// Open picks the wallet described by the configuration: a keypair file
// first, then a mnemonic. With neither it returns a Disconnected wallet.
func Open(keypairPath, mnemonic, passphrase string, opts ...KeypairOption) (Wallet, error) {
	switch {
	case keypairPath != "":
		return FromKeypairFile(keypairPath, opts...)
	case mnemonic != "":
		return FromMnemonic(mnemonic, passphrase, opts...)
	default:
		return Disconnected{}, nil
	}
}
