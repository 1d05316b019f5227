package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/permalink/internal/client/chain"
	"github.com/dmitrijs2005/permalink/internal/client/client"
	"github.com/dmitrijs2005/permalink/internal/client/config"
	"github.com/dmitrijs2005/permalink/internal/client/ens"
	"github.com/dmitrijs2005/permalink/internal/client/models"
	"github.com/dmitrijs2005/permalink/internal/client/networks"
	"github.com/dmitrijs2005/permalink/internal/client/services"
	"github.com/dmitrijs2005/permalink/internal/client/storage"
	"github.com/dmitrijs2005/permalink/internal/common"
	"github.com/dmitrijs2005/permalink/internal/cryptox"
	"github.com/dmitrijs2005/permalink/internal/filex"
	"github.com/dmitrijs2005/permalink/internal/logging"
)

// connector opens a wallet session from a key file. The returned func
// releases the chain connection.
type connector func(ctx context.Context, keyPath string, prompt cryptox.PassphraseFunc) (*chain.Session, func(), error)

type App struct {
	config *config.Config
	net    networks.Config
	log    logging.Logger
	repos  *client.Repositories

	flow    services.UploadFlow
	names   services.NameService
	history services.HistoryService
	connect connector

	session      *chain.Session
	closeSession func()
	lastProgress *models.UploadProgress

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the journal and wires the storage and naming clients for the
// configured network.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	net, err := c.NetworkConfig()
	if err != nil {
		return nil, err
	}

	if err := filex.EnsureParentDir(c.JournalPath); err != nil {
		return nil, err
	}
	repos, err := client.InitDatabase(ctx, c.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	uploader := storage.NewIrysService(net.BundlerURL, c.RequestTimeout, c.BufferPercent, log)
	ensClient := ens.NewClient(net, net.SubgraphURL, c.RequestTimeout, log)
	history := services.NewHistoryService(repos.Journal, string(net.Key))

	a := &App{
		config:  c,
		net:     net,
		log:     log,
		repos:   repos,
		names:   services.NewNameService(ensClient),
		history: history,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	a.flow = services.NewUploadFlow(uploader, ensClient, log,
		services.WithHistory(history),
		services.WithObserver(a.onFlowChange),
	)
	a.connect = a.dialSession
	return a, nil
}

// Run starts the REPL and blocks until the user exits. It releases the
// chain connection and the journal on return.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	fmt.Fprintf(a.out, "Welcome to permalink on %s (type 'help' for commands)\n", a.net.Label)
	if a.config.KeyFile != "" {
		if err := a.Connect(ctx, nil); err != nil {
			fmt.Fprintln(a.out, "Error:", err)
		}
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) close() {
	if a.closeSession != nil {
		a.closeSession()
		a.closeSession = nil
	}
	if a.repos != nil {
		if err := a.repos.Close(); err != nil {
			a.log.Warn(context.Background(), "close journal", "error", err)
		}
	}
}

func (a *App) isConnected() bool {
	return a.session.Ready()
}

func (a *App) getStatus() string {
	s := string(a.net.Key)
	if a.isConnected() {
		s += " " + shortAddress(a.session.Address.Hex())
	}
	if a.flow != nil {
		if state := a.flow.Snapshot().State; state != models.FlowIdle {
			s += " " + string(state)
		}
	}
	return fmt.Sprintf("(%s)", s)
}

// dialSession reads the key, dials the RPC endpoint and checks that it
// serves the configured chain.
func (a *App) dialSession(ctx context.Context, keyPath string, prompt cryptox.PassphraseFunc) (*chain.Session, func(), error) {
	key, err := cryptox.ReadKeyFile(keyPath, prompt)
	if err != nil {
		return nil, nil, err
	}

	reader, err := chain.Dial(ctx, a.net.RPCURL, a.config.PollInterval, a.config.ConfirmationTimeout)
	if err != nil {
		return nil, nil, err
	}

	chainID, err := reader.ChainID(ctx)
	if err != nil {
		reader.Close()
		return nil, nil, fmt.Errorf("query chain id: %w", err)
	}
	if chainID.Int64() != a.net.ChainID {
		reader.Close()
		return nil, nil, fmt.Errorf("%w: rpc serves chain %s, %s is %d", common.ErrWrongNetwork, chainID, a.net.Label, a.net.ChainID)
	}

	wallet := chain.NewWallet(key, chainID, reader.Backend())
	return &chain.Session{Address: wallet.Address(), Signer: wallet, Reader: reader}, reader.Close, nil
}

// onFlowChange prints each new progress event of a running upload.
func (a *App) onFlowChange(snap models.FlowSnapshot) {
	if snap.Progress == nil || (a.lastProgress != nil && *a.lastProgress == *snap.Progress) {
		return
	}
	p := *snap.Progress
	a.lastProgress = &p
	fmt.Fprintln(a.out, formatProgress(p))
}
