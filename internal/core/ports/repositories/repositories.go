package repositories

// RepositoryProvider bundles the repository implementations handed to the
// service layer at startup.
type RepositoryProvider struct {
	WalletRepo    WalletRepositoryWithTx
	MilestoneRepo MilestoneRepositoryWithTx
	KVRepo        KVStore
}
