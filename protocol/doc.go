/*
Package protocol is package for Aries protocol processors. Protocol processors
implement the actual protocol state transitions. The protocol specific message
implementations are located in std package. The saved connections are in
agent/psm.

The connection processor handles the trust ping, discover features and the
handshake reuse of the completed connection as well.
*/
package protocol
