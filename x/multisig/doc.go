/*
Package multisig implements an M-of-N approval gate for arbitrary
calls.

A group of member addresses shares a derived group address. Any member
may record a call it wants the group to make as a proposal. Members
approve proposals independently; once the distinct approvals reach the
group's threshold, anyone may trigger execution and the stored call is
forwarded under the group's authority. The proposer alone may cancel a
proposal that has not executed.

Proposals are immutable once created. The call they carry, including
the access modes of every touched account, is fixed at proposal time
and cannot be amended by approvers or executors.
*/
package multisig
