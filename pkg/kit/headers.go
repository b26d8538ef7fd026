package kit

// HeaderUserID carries the authenticated owner identity from the gateway to
// the services behind it. Clients never set it directly; the gateway strips
// any incoming value.
const HeaderUserID = "X-User-Id"
