// Package foundationdb implements a multi-version database client
// facade: a client-side library that proxies application database calls
// through one of several client implementations loaded at runtime (a
// built-in local client plus zero or more dynamically loaded shared
// libraries), detects the cluster's wire-protocol version, and binds
// transactions to whichever client speaks it — rebinding automatically
// when the cluster is upgraded or downgraded.
//
// A typical program selects an api version, registers any external
// client libraries it wants available, sets up and runs the network,
// opens a database, and issues transactions:
//
//	api := foundationdb.NewMultiVersionApi()
//	if err := api.SelectApiVersion(710); err != nil { ... }
//	if err := api.SetupNetwork(); err != nil { ... }
//	go api.RunNetwork()
//	db, err := api.CreateDatabase("fdb.cluster")
//	tx := db.CreateTransaction()
//	tx.Set(ctx, []byte("k"), []byte("v"))
//	if err := tx.Commit(ctx).Get(ctx); err != nil { ... }
//
// Transactions returned by CreateTransaction remain valid across a
// cluster protocol swap: every transaction option applied with SetOption
// is recorded and replayed against whichever inner client transaction is
// currently backing it.
package foundationdb
