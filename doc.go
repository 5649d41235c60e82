/*
Package main is an application package for the DID Exchange agent. It makes
pairwise connections between agents with the Aries connection protocol
(connections/1.0) and out-of-band invitations, and keeps them alive with
trust pings, feature discovery and basic messages.

You can use the application and related Go packages roughly for three
purposes:

1. As a mediator which hosts the pairwise agents of the edge agents. The
mediator receives the Forward envelopes of the other agents and keeps the
inboxes until the edge agents read them.

2. As a CLI tool for an edge agent. The invitations are created and accepted,
and the connections are driven to completion with the connection commands.
The connections and their message history are saved between the commands.

3. As a library. The protocol/connection package offers the Connection type and
the handle based Connections registry for the applications which drive the
protocol themselves.

# About the build-in CLI

The CLI is built with cobra. Every flag can be given as an environment
variable with the FDX prefix, e.g. FDX_CONNECTION_WALLET_NAME, or in a
configuration file given with --config.

	findy-didexchange tree
	findy-didexchange mediator start --register-file findy.json
	findy-didexchange connection create --wallet-name faber \
		--wallet-key <hex key> --name alice > invitation.json
	findy-didexchange connection accept --wallet-name alice \
		--wallet-key <hex key> --name faber invitation.json
*/
package main
