/*
Package submission delivers finished reports to a backend.

HTTPSubmitter and LogSubmitter perform the delivery itself. Dispatcher wraps
either of them into the asynchronous pipeline the report dialog expects:
it reports waiting right away, delivers in the background and then reports
confirmed or error. Nothing is retried; a failed report is resubmitted by the
user.
*/
package submission
