/*
Package agent is a package for the edge agent and the mediator. It holds all
the needed packages to run the connection protocol: the wallet, the envelope
of the agent-to-agent messages, the transport and the mediator.

The agent package is empty itself. All the functionality is inside
sub-packages. Summary of the packages:

 agency     the mediator, its HTTP client and the pairwise agent register
 aries      is implementation of Aries message union and its factoring
 envelope   packs the messages for the pairwise agent and the Forward layers
 handle     registry of the values behind uint32 handles
 packager   JWM/1.0 Authcrypt and Anoncrypt of the envelopes
 pairwise   AgentInfo, the pairwise keys and the pairwise agent at mediator
 pltype     payload and message types
 psm        Protocol State Machine records of the saved connections
 ssi        wallet: DIDs, keys, signatures
 storage    sealed bolt storage used by the wallet and the psm
 trans      HTTP transport with timeouts and retries
 utils      helpers for version, config, JSON register, ..
*/
package agent
